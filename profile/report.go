package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/pprof/profile"
)

// Top returns an output similar to the pprof top command: per function
// cell counts, heaviest first. flat is the count of cells placed with
// the function as the innermost reported frame, cum counts cells with
// the function anywhere on the stack.
func (p *Profile) Top() string {
	var total int64
	for _, s := range p.pprof.Sample {
		total += s.Value[0]
	}

	type row struct {
		name string
		at   string
		flat int64
		cum  int64
	}
	byFn := make(map[*profile.Function]*row)
	var rows []*row
	for _, s := range p.pprof.Sample {
		seen := make(map[*profile.Function]struct{})
		for i, loc := range s.Location {
			for _, ln := range loc.Line {
				f := ln.Function
				r, ok := byFn[f]
				if !ok {
					r = &row{name: f.Name, at: fmt.Sprintf("%s:%d", trimPath(f.Filename), ln.Line)}
					byFn[f] = r
					rows = append(rows, r)
				}
				if i == 0 {
					r.flat += s.Value[0]
				}
				// recursion counts once per sample
				if _, dup := seen[f]; !dup {
					seen[f] = struct{}{}
					r.cum += s.Value[0]
				}
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].flat != rows[j].flat {
			return rows[i].flat > rows[j].flat
		}
		if rows[i].cum != rows[j].cum {
			return rows[i].cum > rows[j].cum
		}
		return rows[i].name < rows[j].name
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Showing nodes accounting for %d, %s of %d total\n", total, percent(total, total), total)
	sb.WriteString("      flat  flat%   sum%        cum   cum%\n")
	var sum int64
	for _, r := range rows {
		sum += r.flat
		fmt.Fprintf(&sb, "%10d %6s %6s %10d %6s  %s %s\n",
			r.flat, percent(r.flat, total), percent(sum, total), r.cum, percent(r.cum, total), r.name, r.at)
	}
	return sb.String()
}

func percent(v, total int64) string {
	if total == 0 {
		return "0"
	}
	p := 100 * float64(v) / float64(total)
	if p == 100 {
		return "100%"
	}
	return fmt.Sprintf("%.2f%%", p)
}

func trimPath(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
