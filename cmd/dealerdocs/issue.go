package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/store"
)

// identifierReport is the --json output of issue and parse.
type identifierReport struct {
	Identifier string     `json:"identifier"`
	Kind       string     `json:"kind"`
	Serial     string     `json:"serial"`
	Source     string     `json:"source,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

func newIdentifierReport(id dealerdocs.Identifier, source string) identifierReport {
	return identifierReport{
		Identifier: id.String(),
		Kind:       string(id.Kind),
		Serial:     id.Serial,
		Source:     source,
	}
}

// runIssue issues one identifier of the requested kind.
func runIssue(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseIssueFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return fmt.Errorf("%w: issue takes one kind: quote or invoice", ErrUsage)
	}
	kind, err := dealerdocs.ParseKind(pos[0])
	if err != nil {
		return err
	}
	if f.sequential && f.reserve {
		return fmt.Errorf("%w: --sequential and --reserve cannot be combined", ErrUsage)
	}

	a, err := setup(&f.common, env)
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		id     dealerdocs.Identifier
		source string
	)
	switch {
	case f.sequential:
		seq, closeSeq, err := a.openSequencer(ctx)
		if err != nil {
			return err
		}
		defer closeSeq()
		id, err = seq.Next(ctx, kind)
		if err != nil {
			return fmt.Errorf("issuing sequential %s: %w", kind, err)
		}
		source = store.SourceSequence

	case f.reserve:
		db, err := a.requireDB(ctx, "--reserve")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		id, err = a.generator().IssueUnique(ctx, kind, store.NewRegistry(db), 0)
		if err != nil {
			return err
		}
		source = store.SourceReserved

	default:
		id, err = a.generator().Issue(kind)
		if err != nil {
			return err
		}
	}

	a.logger.Debug("identifier issued", zap.String("identifier", id.String()), zap.String("source", source))

	if f.json {
		return writeJSON(env, newIdentifierReport(id, source))
	}
	fmt.Fprintln(env.Stdout, id)
	return nil
}

// runParse splits identifiers into kind and serial. Every argument is
// reported; the first malformed one sets the error.
func runParse(ctx context.Context, args []string, env *Environment) error {
	f, pos, err := parseParseFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return fmt.Errorf("%w: parse needs at least one identifier", ErrUsage)
	}

	var registry *store.Registry
	if f.lookup {
		a, err := setup(&f.common, env)
		if err != nil {
			return err
		}
		defer a.Close()
		db, err := a.requireDB(ctx, "--lookup")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		registry = store.NewRegistry(db)
	}

	var (
		reports  []identifierReport
		firstErr error
	)
	for _, arg := range pos {
		id, ok := dealerdocs.ParseIdentifier(arg)
		if !ok {
			fmt.Fprintf(env.Stderr, "%s: not a Q-###### or I-###### identifier\n", arg)
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %q", ErrNotIdentifier, arg)
			}
			continue
		}

		report := newIdentifierReport(id, "")
		if registry != nil {
			rec, err := registry.Lookup(ctx, arg)
			switch {
			case err == nil:
				report.Source = rec.Source
				report.CreatedAt = &rec.CreatedAt
			case firstErr == nil:
				firstErr = err
				fallthrough
			default:
				fmt.Fprintf(env.Stderr, "%s: %v\n", arg, err)
				continue
			}
		}
		reports = append(reports, report)
	}

	if f.json {
		if err := writeJSON(env, reports); err != nil {
			return err
		}
		return firstErr
	}
	for _, r := range reports {
		line := fmt.Sprintf("%s\t%s\t%s", r.Identifier, r.Kind, r.Serial)
		if r.Source != "" {
			line += fmt.Sprintf("\t%s\t%s", r.Source, r.CreatedAt.Format(time.RFC3339))
		}
		fmt.Fprintln(env.Stdout, line)
	}
	return firstErr
}

// writeJSON prints v as indented JSON on stdout.
func writeJSON(env *Environment, v any) error {
	enc := json.NewEncoder(env.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
