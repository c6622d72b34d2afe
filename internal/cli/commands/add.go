package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/worklens/worklens/internal/cliopt"
	"github.com/worklens/worklens/internal/cliutil"
	"github.com/worklens/worklens/worklens"
)

// listArgs is a custom flag type for repeatable flags like --label
type listArgs []string

func (s *listArgs) String() string { return strings.Join(*s, ",") }
func (s *listArgs) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func RunAdd(g cliopt.GlobalOptions, argv []string) int {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		id, title, desc, status, issueType string
		assignee, extRef, repo, createdBy  string
		design, ac, notes, due             string
		priority, estimate                 int64
		labels                             listArgs
	)
	fs.StringVar(&id, "id", "", "item id (generated when empty)")
	fs.StringVar(&title, "title", "", "title (required)")
	fs.StringVar(&desc, "desc", "", "description")
	fs.StringVar(&status, "status", string(worklens.StatusOpen), "status")
	fs.Int64Var(&priority, "priority", -1, "priority 0..4 (-1 leaves it unset)")
	fs.StringVar(&issueType, "type", "", "issue type")
	fs.StringVar(&assignee, "assignee", "", "assignee")
	fs.Int64Var(&estimate, "estimate", -1, "estimated minutes (-1 leaves it unset)")
	fs.StringVar(&extRef, "ref", "", "external reference")
	fs.StringVar(&repo, "repo", "", "source repository")
	fs.StringVar(&createdBy, "created-by", "", "author")
	fs.StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	fs.StringVar(&design, "design", "", "design notes")
	fs.StringVar(&ac, "ac", "", "acceptance criteria")
	fs.StringVar(&notes, "notes", "", "notes")
	fs.Var(&labels, "label", "label (repeatable)")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	if title == "" {
		fmt.Fprintln(os.Stderr, "missing --title")
		return 2
	}
	if id == "" {
		id = uuid.NewString()
	}

	it := &worklens.Item{
		ID:                 id,
		Title:              title,
		Description:        desc,
		Status:             worklens.Status(status),
		IssueType:          issueType,
		CreatedBy:          createdBy,
		Design:             design,
		AcceptanceCriteria: ac,
		Notes:              notes,
		Labels:             labels,
	}
	if priority >= 0 {
		it.Priority = &priority
	}
	if estimate >= 0 {
		it.EstimatedMinutes = &estimate
	}
	if assignee != "" {
		it.Assignee = &assignee
	}
	if extRef != "" {
		it.ExternalRef = &extRef
	}
	if repo != "" {
		it.SourceRepo = &repo
	}
	if due != "" {
		t, err := time.ParseInLocation("2006-01-02", due, time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid --due %q: %v\n", due, err)
			return 2
		}
		it.DueDate = &t
	}

	ctx := context.Background()
	store, err := cliutil.OpenStore(ctx, g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	if err := store.Put(ctx, it); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintln(os.Stdout, it.ID)
	return 0
}
