package sim

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gonum.org/v1/gonum/stat"
)

// PlayerStats aggregates one side of a simulation
type PlayerStats struct {
	Name     string
	Wins     int
	Losses   int
	Moves    int
	MoveTime time.Duration // mean
	MoveDev  time.Duration // standard deviation
	Depth    float64       // mean search depth
	Nodes    float64       // mean nodes per move
	AsWhite  int           // games played with the white pieces
}

type Report struct {
	Games    int
	Draws    int
	Duration time.Duration
	Plies    float64 // mean plies per game
	Players  [2]PlayerStats
	Results  []GameResult
}

func newReport(cfg Config, results []GameResult, elapsed time.Duration) *Report {
	r := &Report{
		Games:    len(results),
		Duration: elapsed,
		Results:  results,
	}
	r.Players[0].Name = Name(cfg.Player1)
	r.Players[1].Name = Name(cfg.Player2)

	var times, depths, nodes [3][]float64
	plies := make([]float64, 0, len(results))
	for _, res := range results {
		plies = append(plies, float64(res.Plies))
		if res.P1White {
			r.Players[0].AsWhite++
		} else {
			r.Players[1].AsWhite++
		}
		switch res.Winner {
		case 0:
			r.Draws++
		case 1:
			r.Players[0].Wins++
			r.Players[1].Losses++
		case 2:
			r.Players[1].Wins++
			r.Players[0].Losses++
		}
		for side := 1; side <= 2; side++ {
			for _, s := range res.samples[side] {
				times[side] = append(times[side], float64(s.duration))
				depths[side] = append(depths[side], float64(s.depth))
				nodes[side] = append(nodes[side], float64(s.nodes))
			}
		}
	}
	r.Plies = mean(plies)

	for side := 1; side <= 2; side++ {
		p := &r.Players[side-1]
		p.Moves = len(times[side])
		p.MoveTime = time.Duration(mean(times[side]))
		if len(times[side]) > 1 {
			p.MoveDev = time.Duration(stat.StdDev(times[side], nil))
		}
		p.Depth = mean(depths[side])
		p.Nodes = mean(nodes[side])
	}
	return r
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// WinRate returns the share of games won by player 1 or 2
func (r *Report) WinRate(player int) float64 {
	if r.Games == 0 || player < 1 || player > 2 {
		return 0
	}
	return float64(r.Players[player-1].Wins) / float64(r.Games)
}

// Write prints the final report as a table
func (r *Report) Write(w io.Writer) error {
	fmt.Fprintf(w, "Games: %d  Draws: %d  Avg plies: %.1f  Time: %s\n\n",
		r.Games, r.Draws, r.Plies, r.Duration.Round(time.Millisecond))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Player\tName\tWins\tLosses\tWin %\tAs White\tMoves\tAvg Move\tStd Dev\tAvg Depth\tAvg Nodes\t")
	for i, p := range r.Players {
		fmt.Fprintf(tw, "P%d\t%s\t%d\t%d\t%.1f\t%d\t%d\t%s\t%s\t%.2f\t%.0f\t\n",
			i+1, p.Name, p.Wins, p.Losses, 100*r.WinRate(i+1), p.AsWhite, p.Moves,
			p.MoveTime.Round(time.Microsecond), p.MoveDev.Round(time.Microsecond), p.Depth, p.Nodes)
	}
	return tw.Flush()
}
