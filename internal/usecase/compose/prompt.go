package compose

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	"github.com/kailas-cloud/brewdesk/internal/domain/evidence"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
)

// section headers
const (
	summaryHeader  = "Conversation summary:\n"
	turnsHeader    = "Recent conversation:\n"
	productsHeader = "Product evidence:\n"
	outletsHeader  = "Outlet records:\n"
	questionHeader = "Question: "
	sectionSep     = "\n\n"
)

// plan is the budgeted selection of prompt material.
type plan struct {
	summary  string
	turns    []conversation.Turn
	products []evidence.Evidence
	outlets  []outlet.Record
	question string

	droppedTurns    int
	droppedProducts int
	droppedOutlets  int
}

func productLine(i int, e evidence.Evidence) string {
	return fmt.Sprintf("[P%d] (%s, score %.3f) %s\n", i+1, e.ChunkID(), e.Score(), e.Text())
}

func outletLine(i int, r outlet.Record) string {
	return fmt.Sprintf("[O%d] (outlet %s) %s\n", i+1, r.ID, r.Render())
}

func turnLine(t conversation.Turn) string {
	return string(t.Role) + ": " + t.Text + "\n"
}

// size returns the rendered length of the plan in characters.
func (p *plan) size() int {
	return utf8.RuneCountInString(p.render())
}

// render lays the prompt out in a fixed order: summary, turns, product
// evidence by rank, outlet rows in store order, question.
func (p *plan) render() string {
	var sections []string

	if p.summary != "" {
		sections = append(sections, summaryHeader+p.summary)
	}
	if len(p.turns) > 0 {
		var b strings.Builder
		b.WriteString(turnsHeader)
		for _, t := range p.turns {
			b.WriteString(turnLine(t))
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	if len(p.products) > 0 {
		var b strings.Builder
		b.WriteString(productsHeader)
		for i, e := range p.products {
			b.WriteString(productLine(i, e))
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	if len(p.outlets) > 0 {
		var b strings.Builder
		b.WriteString(outletsHeader)
		for i, r := range p.outlets {
			b.WriteString(outletLine(i, r))
		}
		sections = append(sections, strings.TrimRight(b.String(), "\n"))
	}
	sections = append(sections, questionHeader+p.question)

	return strings.Join(sections, sectionSep)
}

// fit trims the plan to budget characters. Oldest turns go first, then the
// lowest-ranked product evidence, then the latest outlet rows. The summary and
// question are never dropped, so the result may still exceed a tiny budget.
func (p *plan) fit(budget int) {
	if budget <= 0 {
		return
	}
	for p.size() > budget {
		switch {
		case len(p.turns) > 0:
			p.turns = p.turns[1:]
			p.droppedTurns++
		case len(p.products) > 0:
			p.products = p.products[:len(p.products)-1]
			p.droppedProducts++
		case len(p.outlets) > 0:
			p.outlets = p.outlets[:len(p.outlets)-1]
			p.droppedOutlets++
		default:
			return
		}
	}
}
