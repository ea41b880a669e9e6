package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"text/template"

	"github.com/Dosada05/efootball-hub/models"
)

var summaryTemplates = map[string][]string{
	"draw": {
		"{{.A}} and {{.B}} shared the points in a {{.ScoreA}}-{{.ScoreB}} draw.",
		"Nothing to separate {{.A}} and {{.B}}: it finished {{.ScoreA}}-{{.ScoreB}}.",
	},
	"narrow": {
		"{{.Winner}} edged past {{.Loser}} {{.WinnerGoals}}-{{.LoserGoals}}.",
		"A tight one: {{.Winner}} beat {{.Loser}} {{.WinnerGoals}}-{{.LoserGoals}}.",
	},
	"comfortable": {
		"{{.Winner}} got the better of {{.Loser}} with a {{.WinnerGoals}}-{{.LoserGoals}} win.",
		"{{.Winner}} were too strong for {{.Loser}}, winning {{.WinnerGoals}}-{{.LoserGoals}}.",
	},
	"rout": {
		"{{.Winner}} ran riot against {{.Loser}}, a {{.WinnerGoals}}-{{.LoserGoals}} demolition.",
		"A statement win: {{.Winner}} put {{.WinnerGoals}} past {{.Loser}} ({{.WinnerGoals}}-{{.LoserGoals}}).",
	},
}

type summaryData struct {
	A, B                    string
	ScoreA, ScoreB          int
	Winner, Loser           string
	WinnerGoals, LoserGoals int
}

// TemplateSummaryGenerator writes a one-line match report without any
// external service. The same match always gets the same wording.
type TemplateSummaryGenerator struct {
	templates map[string][]*template.Template
}

func NewTemplateSummaryGenerator() (*TemplateSummaryGenerator, error) {
	g := &TemplateSummaryGenerator{templates: make(map[string][]*template.Template, len(summaryTemplates))}
	for kind, texts := range summaryTemplates {
		for i, text := range texts {
			t, err := template.New(fmt.Sprintf("%s-%d", kind, i)).Parse(text)
			if err != nil {
				return nil, fmt.Errorf("parse summary template %s-%d: %w", kind, i, err)
			}
			g.templates[kind] = append(g.templates[kind], t)
		}
	}
	return g, nil
}

func (g *TemplateSummaryGenerator) GenerateSummary(ctx context.Context, teamA, teamB models.Team, scoreA, scoreB int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data := summaryData{A: teamA.Name, B: teamB.Name, ScoreA: scoreA, ScoreB: scoreB}
	if scoreA >= scoreB {
		data.Winner, data.Loser, data.WinnerGoals, data.LoserGoals = teamA.Name, teamB.Name, scoreA, scoreB
	} else {
		data.Winner, data.Loser, data.WinnerGoals, data.LoserGoals = teamB.Name, teamA.Name, scoreB, scoreA
	}

	var kind string
	switch margin := data.WinnerGoals - data.LoserGoals; {
	case margin == 0:
		kind = "draw"
	case margin == 1:
		kind = "narrow"
	case margin >= 4:
		kind = "rout"
	default:
		kind = "comfortable"
	}

	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%d|%d", teamA.ID, teamB.ID, scoreA, scoreB)
	options := g.templates[kind]
	t := options[int(h.Sum32()%uint32(len(options)))]

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return buf.String(), nil
}
