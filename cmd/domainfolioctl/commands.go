package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/workers/expiry"
	"github.com/spf13/cobra"
)

func exportCmd(open opener) *cobra.Command {
	var ids []string
	var out string
	var pred domain.Predicate

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write domains as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			name, err := e.portfolio.ExportCSV(cmd.Context(), w, pred, ids)
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s (download name %s)\n", out, name)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "ids", nil, "export only these domain ids")
	cmd.Flags().StringVarP(&pred.Text, "search", "q", "", "only domains matching this text")
	cmd.Flags().BoolVar(&pred.ShowHidden, "hidden", false, "export the hidden domains instead")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

// importRow is one parsed line of an import file.
type importRow struct {
	line  int
	patch domain.DomainPatch
}

// parseImport reads name[,type,project,department,registrar] rows. A first
// row whose name column is not a domain is treated as a header.
func parseImport(r io.Reader) ([]importRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []importRow
	for line := 1; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 || strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if line == 1 && !strings.Contains(fields[0], ".") {
			continue
		}

		name := strings.TrimSpace(fields[0])
		patch := domain.DomainPatch{Name: &name}
		if v := column(fields, 1); v != "" {
			t := domain.DomainType(v)
			patch.Type = &t
		}
		if v := column(fields, 2); v != "" {
			patch.Project = &v
		}
		if v := column(fields, 3); v != "" {
			patch.Department = &v
		}
		if v := column(fields, 4); v != "" {
			patch.Registrar = &v
		}
		rows = append(rows, importRow{line: line, patch: patch})
	}
}

// checkRow applies the gateway's field checks without writing.
func checkRow(row importRow) error {
	if _, err := domain.ValidateDomainName(*row.patch.Name); err != nil {
		return err
	}
	if row.patch.Type != nil && !row.patch.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown domain type %q", *row.patch.Type))
	}
	return nil
}

func column(fields []string, i int) string {
	if i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func importCmd(open opener) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Create domains from a CSV file (name[,type,project,department,registrar])",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := parseImport(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if dryRun {
				invalid := 0
				for _, row := range rows {
					if err := checkRow(row); err != nil {
						fmt.Fprintf(out, "line %d: %v\n", row.line, err)
						invalid++
					}
				}
				fmt.Fprintf(out, "%d rows, %d invalid\n", len(rows), invalid)
				return nil
			}

			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			created, skipped, failed := 0, 0, 0
			for _, row := range rows {
				rec, err := e.gateway.CreateDomain(cmd.Context(), row.patch)
				switch {
				case errors.Is(err, domain.ErrDuplicate):
					skipped++
					fmt.Fprintf(out, "line %d: skipped: %v\n", row.line, err)
				case err != nil:
					failed++
					fmt.Fprintf(out, "line %d: %v\n", row.line, err)
				default:
					created++
					fmt.Fprintf(out, "created %s %s\n", rec.ID, rec.Name)
				}
			}
			fmt.Fprintf(out, "%d created, %d skipped, %d failed\n", created, skipped, failed)
			if failed > 0 {
				return fmt.Errorf("%d rows failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate names without writing")
	return cmd
}

func validateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check stored names and report duplicates",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			records, err := e.portfolio.Domains(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			problems := 0
			for _, r := range records {
				if _, err := domain.ValidateDomainName(r.Name); err != nil {
					fmt.Fprintf(out, "%s: %v\n", r.ID, err)
					problems++
				}
			}
			for _, g := range domain.FindDuplicates(records) {
				fmt.Fprintf(out, "duplicate %s: %s\n", g.Name, strings.Join(g.IDs, ", "))
				problems++
			}
			if problems > 0 {
				return fmt.Errorf("%d problems found in %d domains", problems, len(records))
			}
			fmt.Fprintf(out, "%d domains OK\n", len(records))
			return nil
		},
	}
}

func duplicatesCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicates",
		Short: "List domains sharing a name",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			groups, err := e.portfolio.Duplicates(cmd.Context())
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No duplicates.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tIDS")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\n", g.Name, strings.Join(g.IDs, ", "))
			}
			return w.Flush()
		},
	}
}

func expiringCmd(open opener) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List domains due for renewal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			records, err := e.portfolio.Domains(cmd.Context())
			if err != nil {
				return err
			}
			entries := expiry.Expiring(records, e.portfolio.Clock(), days)
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing due within %d days.\n", days)
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDAYS LEFT")
			for _, en := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", en.ID, en.Name, en.Status, en.DaysLeft)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&days, "days", domain.ExpiringWindowDays, "window in days")
	return cmd
}
