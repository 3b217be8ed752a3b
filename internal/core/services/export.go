package services

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/domain"
)

var csvHeader = []string{
	"Домен",
	"Тип",
	"Статус",
	"Проект",
	"Отдел",
	"Регистратор",
	"Дата окончания",
	"SSL",
}

// WriteCSV writes records with every field wrapped in double quotes.
func WriteCSV(w io.Writer, records []domain.DomainRecord) error {
	bw := bufio.NewWriter(w)
	if err := writeCSVRow(bw, csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Name,
			string(r.Type),
			string(r.Status),
			r.Project,
			r.Department,
			r.Registrar,
			r.ExpirationDate,
			r.SSLStatus,
		}
		if err := writeCSVRow(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeCSVRow(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

// ExportFilename names a CSV download: domains-selected-<date>.csv for a
// selection, domains-export-<date>.csv otherwise.
func ExportFilename(selected bool, now time.Time) string {
	kind := "export"
	if selected {
		kind = "selected"
	}
	return fmt.Sprintf("domains-%s-%s.csv", kind, now.UTC().Format(isoDate))
}
