package client

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/atinyakov/AdminBoard/internal/models"
)

// PromptRecord asks for the fields of a record one line at a time. Empty
// answers keep the values already in base, so the same prompt serves both
// add and edit.
func PromptRecord(in *bufio.Scanner, out io.Writer, base models.Record) (models.Record, error) {
	rec := base
	fields := []struct {
		label string
		dst   *string
	}{
		{"title", &rec.Title},
		{"author", &rec.Author},
		{"status", &rec.Status},
		{"type", &rec.Type},
		{"remark", &rec.Remark},
	}
	for _, f := range fields {
		v, err := ask(in, out, f.label, *f.dst)
		if err != nil {
			return rec, err
		}
		if v != "" {
			*f.dst = v
		}
	}

	v, err := ask(in, out, "pageviews", strconv.FormatInt(rec.Pageviews, 10))
	if err != nil {
		return rec, err
	}
	if v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return rec, fmt.Errorf("pageviews must be an integer: %w", err)
		}
		rec.Pageviews = n
	}
	return rec, nil
}

func ask(in *bufio.Scanner, out io.Writer, label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(out, "Enter %s [%s]: ", label, current)
	} else {
		fmt.Fprintf(out, "Enter %s: ", label)
	}
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(in.Text()), nil
}
