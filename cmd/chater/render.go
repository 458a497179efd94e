package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/PaulBabatuyi/chater/internal/data"
)

// printer writes human readable output, colored unless disabled.
type printer struct {
	w      io.Writer
	colors bool
	names  map[string]string
}

func newPrinter(w io.Writer, colors bool) *printer {
	return &printer{w: w, colors: colors, names: make(map[string]string)}
}

func (p *printer) paint(style color.Style, s string) string {
	if !p.colors {
		return s
	}
	return style.Render(s)
}

func (p *printer) remember(users ...data.PublicUser) {
	for _, u := range users {
		p.names[u.ID] = u.Name
	}
}

func (p *printer) name(id string) string {
	if n, ok := p.names[id]; ok {
		return n
	}
	return id
}

func formatDate(ts float64) string {
	if ts <= 0 {
		return "-"
	}
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).Local().Format("2006-01-02 15:04:05")
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

// dialogs prints one row per dialog. self is omitted from the party column.
func (p *printer) dialogs(ds []data.Dialog, self string) {
	table := newTable(p.w, []string{"ID", "Type", "With", "Messages", "Updated"})
	for _, d := range ds {
		with := "everyone"
		if d.IsPrivate() {
			with = ""
			for _, id := range d.Party {
				if id != self {
					with = p.name(id)
				}
			}
		}
		table.Append([]string{d.ID, d.Type, with, strconv.Itoa(d.MessagesCount), formatDate(d.UpdatedAt)})
	}
	table.Render()
}

func (p *printer) users(us []data.PublicUser) {
	table := newTable(p.w, []string{"ID", "Name", "Email"})
	for _, u := range us {
		table.Append([]string{u.ID, u.Name, u.Email})
	}
	table.Render()
}

func (p *printer) message(m data.Message) {
	stamp := p.paint(color.New(color.FgGray), formatDate(m.Date))
	author := p.paint(color.New(color.FgGreen, color.OpBold), p.name(m.Author))
	fmt.Fprintf(p.w, "%s %s: %s\n", stamp, author, m.Content)
}

func (p *printer) messages(ms []data.Message) {
	for _, m := range ms {
		p.message(m)
	}
}

func (p *printer) notice(format string, args ...any) {
	fmt.Fprintln(p.w, p.paint(color.New(color.FgCyan), fmt.Sprintf(format, args...)))
}
