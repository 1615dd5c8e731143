// Package export builds the instructor answer-key workbook.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hku-span/span2030/internal/curriculum"
	"github.com/hku-span/span2030/internal/exercise"
)

// IndexSheet lists every topic with its exercise counts.
const IndexSheet = "Temas"

// Source is the read side of the catalog the export needs.
type Source interface {
	AllTopics() []curriculum.Topic
	TopicBlocks(topicID string) []exercise.Block
}

var (
	indexHeader = []any{"Tema", "Título", "Parte", "Ejercicios", "Campos"}
	topicHeader = []any{"Ejercicio", "Pestaña", "Campo", "Enunciado", "Tipo", "Respuestas aceptadas", "Pista"}
)

// SheetName returns the worksheet name used for a topic.
func SheetName(topicID string) string {
	return "Tema " + topicID
}

// AnswerKey builds the workbook. Topics without exercises get an index row
// but no sheet. The caller must Close the returned file.
func AnswerKey(src Source) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", IndexSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename index sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := writeRow(f, IndexSheet, 1, indexHeader); err != nil {
		f.Close()
		return nil, err
	}

	row := 2
	for _, topic := range src.AllTopics() {
		blocks := src.TopicBlocks(topic.ID)
		fields := 0
		for _, b := range blocks {
			fields += len(b.Fields)
		}

		if err := writeRow(f, IndexSheet, row, []any{topic.ID, topic.Title, topic.PartID, len(blocks), fields}); err != nil {
			f.Close()
			return nil, err
		}
		row++

		if len(blocks) == 0 {
			continue
		}
		if err := writeTopicSheet(f, SheetName(topic.ID), blocks, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("topic %s: %w", topic.ID, err)
		}
	}

	if err := f.SetRowStyle(IndexSheet, 1, 1, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("style index header: %w", err)
	}
	if err := f.SetColWidth(IndexSheet, "B", "B", 40); err != nil {
		f.Close()
		return nil, fmt.Errorf("size index columns: %w", err)
	}
	f.SetActiveSheet(0)
	return f, nil
}

func writeTopicSheet(f *excelize.File, sheet string, blocks []exercise.Block, headerStyle int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := writeRow(f, sheet, 1, topicHeader); err != nil {
		return err
	}

	row := 2
	for _, b := range blocks {
		for _, field := range b.Fields {
			values := []any{
				b.ID,
				b.Tab,
				field.ID,
				field.Prompt,
				string(field.Kind),
				strings.Join(field.Accept, " / "),
				field.Hint,
			}
			if err := writeRow(f, sheet, row, values); err != nil {
				return err
			}
			row++
		}
	}

	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(sheet, "D", "D", 50); err != nil {
		return fmt.Errorf("size columns: %w", err)
	}
	return f.SetColWidth(sheet, "F", "F", 35)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// WriteAnswerKey streams the workbook as XLSX to w.
func WriteAnswerKey(w io.Writer, src Source) error {
	f, err := AnswerKey(src)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
