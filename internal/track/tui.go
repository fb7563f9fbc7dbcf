// Package track implements the tracker driver: loading a snapshot,
// running the continuous re-poll scheduler, and rendering the live
// state to a terminal. Per spec.md §6, the terminal UI is "a
// collaborator of the core, not part of it" — this package exposes
// only the minimal renderer needed to drive the HostList iteration API
// the real curses-style UI would consume; it deliberately does not
// reimplement full interactive widgets, scrolling, or clipboard
// integration (spec.md §1 Out of scope).
package track

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gookit/color"

	"go.minekube.com/slpwatch/internal/model"
)

// refreshInterval paces the dashboard redraw independently of poll
// cycles.
const refreshInterval = time.Second

// Renderer draws the live HostList state to w on a fixed interval
// until ctx is cancelled.
type Renderer struct {
	hosts *model.HostList
	out   io.Writer
}

// NewRenderer constructs a Renderer over hosts, writing to out.
func NewRenderer(hosts *model.HostList, out io.Writer) *Renderer {
	return &Renderer{hosts: hosts, out: out}
}

// Run redraws the dashboard every refreshInterval until ctx is done.
func (r *Renderer) Run(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()
	for {
		r.draw()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// row is one renderable line: a server sorted by active-then-player-count
// descending, per spec.md §6.
type row struct {
	address string
	server  *model.Server
}

func (r *Renderer) rows() []row {
	var rows []row
	for _, h := range r.hosts.Hosts() {
		for _, s := range h.Servers() {
			rows = append(rows, row{address: h.Address, server: s})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].server, rows[j].server
		if a.Active() != b.Active() {
			return a.Active() // active first
		}
		return a.ActivePlayers() > b.ActivePlayers()
	})
	return rows
}

func (r *Renderer) draw() {
	fmt.Fprint(r.out, "\033[H\033[2J") // home cursor, clear screen

	for _, rr := range r.rows() {
		s := rr.server
		line := fmt.Sprintf("%-32s  %5d/%-5d players", fmt.Sprintf("%s:%d", rr.address, s.Port), s.ActivePlayers(), s.MaxPlayers())
		if s.Active() {
			fmt.Fprintln(r.out, color.Green.Sprint(line))
		} else {
			fmt.Fprintln(r.out, line)
		}
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, color.Cyan.Sprint(statusBar(r.hosts)))
}

func statusBar(hosts *model.HostList) string {
	servers := hosts.AllServers()
	active := 0
	for _, s := range servers {
		if s.Active() {
			active++
		}
	}
	return fmt.Sprintf("%d/%d servers active — ↑/↓ move · PgUp/PgDn page · V detail · C copy · Del remove · Q quit",
		active, len(servers))
}
