package engine

import (
	"context"
	"time"

	"github.com/kilianp07/shiftplan/core/cpmodel"
	"github.com/kilianp07/shiftplan/core/model"
)

// stint is one contiguous gatekeeper block of the greedy cover.
type stint struct {
	e, d, start, length int
}

// greedyCover staffs the gatekeeper role day by day with contiguous stints.
// Every stint respects availability, shift bounds, weekly caps and the
// department maxima reached through dual credit, so the result is a feasible
// schedule. Each employee works at most one stint per day.
func (b *builder) greedyCover() []stint {
	f := b.f
	minLen := max(b.policy.MinShiftSlots, b.policy.MinGatekeeperSlots, 1)
	maxLen := b.policy.MaxShiftSlots
	if minLen > maxLen {
		return nil
	}
	left := make([]int, len(f.emps))
	owed := make([]int, len(f.emps))
	for e, emp := range f.emps {
		left[e] = b.weeklyCapSlots(emp)
		owed[e] = f.cal.HoursToSlots(emp.TargetHours)
	}
	units := make(map[model.Role]int64, len(b.depts))

	var out []stint
	for d := range f.cal.Days {
		busy := make([]bool, len(f.emps))
		for t := 0; t < f.cal.Slots; {
			best, bestLen := -1, 0
			for e := range f.emps {
				if busy[e] || !f.qualified(e, gk) {
					continue
				}
				n := b.stintLength(e, d, t, min(maxLen, left[e]), units)
				// Leave a tail the next stint can still cover.
				if rest := f.cal.Slots - t - n; rest > 0 && rest < minLen && n-(minLen-rest) >= minLen {
					n -= minLen - rest
				}
				if n < minLen {
					continue
				}
				if best < 0 || n > bestLen ||
					(n == bestLen && owed[e] > owed[best]) ||
					(n == bestLen && owed[e] == owed[best] && f.emps[e].Year < f.emps[best].Year) {
					best, bestLen = e, n
				}
			}
			if best < 0 {
				t++
				continue
			}
			out = append(out, stint{e: best, d: d, start: t, length: bestLen})
			busy[best] = true
			left[best] -= bestLen
			owed[best] -= bestLen
			b.ledger.Credit(f.emps[best], f.roles[gk], func(dept model.Role, _ model.CreditKind, u int) {
				units[dept] += int64(u * bestLen)
			})
			t += bestLen
		}
	}
	return out
}

// stintLength is the longest gatekeeper block employee e can work from slot t
// of day d, bounded by limit and by the department units still available.
func (b *builder) stintLength(e, d, t, limit int, units map[model.Role]int64) int {
	f := b.f
	emp := f.emps[e]
	b.ledger.Credit(emp, f.roles[gk], func(dept model.Role, _ model.CreditKind, u int) {
		if u > 0 {
			limit = min(limit, int((b.maxUnits(dept)-units[dept])/int64(u)))
		}
	})
	n := 0
	for s := t; s < f.cal.Slots && n < limit && emp.Available(f.cal.Days[d], s); s++ {
		n++
	}
	return n
}

// seedLiterals fixes every working and assignment variable to the stints.
func (b *builder) seedLiterals(stints []stint) []cpmodel.Lit {
	f := b.f
	on := make(map[[3]int]bool)
	for _, s := range stints {
		for t := s.start; t < s.start+s.length; t++ {
			on[[3]int{s.e, s.d, t}] = true
		}
	}
	var lits []cpmodel.Lit
	for e := range f.emps {
		for d := range f.cal.Days {
			for t := 0; t < f.cal.Slots; t++ {
				working := on[[3]int{e, d, t}]
				lits = append(lits, litOf(f.work[e][d][t], working))
				for r, v := range f.asn[e][d][t] {
					if v != 0 {
						lits = append(lits, litOf(v, working && r == gk))
					}
				}
			}
		}
	}
	return lits
}

func litOf(v cpmodel.BoolVar, value bool) cpmodel.Lit {
	if value {
		return v.Lit()
	}
	return v.Not()
}

// seed turns the greedy cover into a complete solution of the model and
// returns it with the number of slots it covers. It returns nil when the
// completion does not finish within limit.
func (p *Problem) seed(ctx context.Context, limit time.Duration) (*cpmodel.Solution, int) {
	stints := p.b.greedyCover()
	sol := p.b.m.Complete(ctx, p.b.seedLiterals(stints), cpmodel.SolveOptions{TimeLimit: limit})
	if !sol.Status.HasSolution() {
		return nil, 0
	}
	covered := 0
	for _, s := range stints {
		covered += s.length
	}
	return sol, covered
}
