// Package export writes ranked matching results to spreadsheets.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spigell/cv-matcher/internal/candidates"
)

const (
	ResultsSheet   = "CV Matching Results"
	BreakdownSheet = "Skill Breakdown"

	headerColor = "366092"
	strongColor = "90EE90"
	fairColor   = "FFFF99"
	weakColor   = "FFB6C1"
)

var resultColumns = []struct {
	header string
	width  float64
}{
	{"Rank", 8},
	{"Name", 20},
	{"Match Score", 12},
	{"Deterministic Score", 15},
	{"AI Score", 10},
	{"Professional Specialty", 25},
	{"Experience (Years)", 15},
	{"Email", 25},
	{"Matched Skills", 50},
	{"Reasoning", 60},
	{"AI Rationale", 60},
}

var breakdownHeaders = []string{"Candidate", "Requirement", "Percentage", "Score", "Max Score", "Candidate Weight", "Proficiency", "Sources"}

// DefaultPath returns a timestamped file name in the working directory.
func DefaultPath(now time.Time) string {
	return fmt.Sprintf("cv_matching_results_%s.xlsx", now.UTC().Format("2006-01-02T15-04-05"))
}

// MatchingResults writes results to outputPath and returns the path actually
// written. An empty path uses DefaultPath.
func MatchingResults(results *candidates.Results, outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = DefaultPath(time.Now())
	}
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath += ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return "", err
	}
	if _, err := f.NewSheet(BreakdownSheet); err != nil {
		return "", err
	}

	if err := writeResultsSheet(f, results); err != nil {
		return "", fmt.Errorf("write results sheet: %w", err)
	}
	if err := writeBreakdownSheet(f, results); err != nil {
		return "", fmt.Errorf("write breakdown sheet: %w", err)
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("save spreadsheet: %w", err)
	}

	return outputPath, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
}

func fillStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}

func writeHeaders(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeResultsSheet(f *excelize.File, results *candidates.Results) error {
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	strong, err := fillStyle(f, strongColor)
	if err != nil {
		return err
	}
	fair, err := fillStyle(f, fairColor)
	if err != nil {
		return err
	}
	weak, err := fillStyle(f, weakColor)
	if err != nil {
		return err
	}

	headers := make([]string, 0, len(resultColumns))
	for i, col := range resultColumns {
		headers = append(headers, col.header)
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(ResultsSheet, name, name, col.width); err != nil {
			return err
		}
	}
	if err := writeHeaders(f, ResultsSheet, headers, header); err != nil {
		return err
	}

	for i, res := range results.Items {
		row := i + 2

		var aiScore any = ""
		aiRationale := ""
		if res.AI != nil {
			if res.AI.Error == "" {
				aiScore = res.AI.Score
				aiRationale = res.AI.Rationale
			} else {
				aiRationale = "error: " + res.AI.Error
			}
		}

		specialty, years := "", any("")
		if cv := res.Candidate.CV; cv != nil {
			specialty = cv.ProfessionalSpecialty
			if cv.TotalYearsExperience != nil {
				years = *cv.TotalYearsExperience
			}
		}

		values := []any{
			i + 1,
			res.Candidate.Name,
			res.MatchScore,
			res.Match.OverallScore,
			aiScore,
			specialty,
			years,
			res.Candidate.Email,
			strings.Join(res.MatchedSkills, ", "),
			res.Reasoning,
			aiRationale,
		}

		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ResultsSheet, cell, &values); err != nil {
			return err
		}

		style := 0
		switch {
		case res.MatchScore >= 80:
			style = strong
		case res.MatchScore >= 60:
			style = fair
		case res.MatchScore < 40:
			style = weak
		}
		if style != 0 {
			scoreCell, err := excelize.CoordinatesToCellName(3, row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(ResultsSheet, scoreCell, scoreCell, style); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeBreakdownSheet(f *excelize.File, results *candidates.Results) error {
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := writeHeaders(f, BreakdownSheet, breakdownHeaders, header); err != nil {
		return err
	}

	row := 2
	for _, res := range results.Items {
		for _, skill := range res.Match.Skills() {
			b := res.Match.SkillBreakdown[skill]

			sections := make([]string, 0, len(b.Sources))
			for _, src := range b.Sources {
				sections = append(sections, string(src.Section))
			}

			values := []any{
				res.Candidate.Name,
				skill,
				b.Percentage,
				b.Score,
				b.MaxScore,
				b.CandidateWeight,
				b.Proficiency,
				strings.Join(sections, ", "),
			}

			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(BreakdownSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}

	return nil
}
