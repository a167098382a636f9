package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/naka-gawa/lint-gate/internal/domain"
	"github.com/naka-gawa/lint-gate/internal/gateway"
	"golang.org/x/sync/errgroup"
)

// maxCommentFindings caps the findings listed in a pull request comment.
const maxCommentFindings = 20

// PublishTarget identifies where a report is published.
type PublishTarget struct {
	Owner         string
	Repo          string
	SHA           string
	PR            int
	StatusContext string
	TargetURL     string
}

// Publisher is the use case for publishing a gate report to GitHub.
type Publisher struct {
	reporter gateway.Reporter
	logger   *log.Logger
}

// NewPublisher creates a new Publisher instance.
func NewPublisher(reporter gateway.Reporter, logger *log.Logger) *Publisher {
	return &Publisher{
		reporter: reporter,
		logger:   logger,
	}
}

// Publish sets the commit status and, when target.PR is set, comments on the
// pull request. Both calls run concurrently. Publishing never changes the
// report's outcome; callers should only log the returned error.
func (p *Publisher) Publish(ctx context.Context, target PublishTarget, report *domain.Report) error {
	p.logger.Println("Usecase: Publishing lint gate result...")

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return p.reporter.CreateStatus(egCtx, target.Owner, target.Repo, target.SHA, gateway.CommitStatus{
			State:       statusState(report.Outcome),
			Context:     target.StatusContext,
			Description: StatusDescription(report),
			TargetURL:   target.TargetURL,
		})
	})

	if target.PR > 0 {
		eg.Go(func() error {
			return p.reporter.CommentOnPR(egCtx, target.Owner, target.Repo, target.PR, CommentBody(report))
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}
	p.logger.Println("Usecase: Publishing complete.")
	return nil
}

func statusState(outcome domain.Outcome) string {
	if outcome == domain.Pass {
		return "success"
	}
	return "failure"
}

// StatusDescription is the one-line description used for the commit status.
func StatusDescription(report *domain.Report) string {
	if report.Outcome == domain.Pass {
		return fmt.Sprintf("%s passed", report.Tool)
	}
	if report.Summary != nil && report.Summary.TotalFindings > 0 {
		return fmt.Sprintf("%s failed: %d findings in %d files",
			report.Tool, report.Summary.TotalFindings, report.Summary.FilesAffected)
	}
	return fmt.Sprintf("%s failed with exit status %d", report.Tool, report.ToolExitCode)
}

// CommentBody renders the report as a Markdown pull request comment.
func CommentBody(report *domain.Report) string {
	var b strings.Builder
	icon := ":white_check_mark:"
	if report.Outcome == domain.Fail {
		icon = ":x:"
	}
	fmt.Fprintf(&b, "### %s Lint gate: %s\n\n", icon, StatusDescription(report))

	if report.Summary == nil || report.Summary.TotalFindings == 0 {
		return b.String()
	}

	s := report.Summary
	fmt.Fprintf(&b, "%d findings in %d files (mean %.2f, median %.1f, max %.0f per file).\n\n",
		s.TotalFindings, s.FilesAffected, s.MeanPerFile, s.MedianPerFile, s.MaxPerFile)
	b.WriteString("| File | Line | Code | Message |\n|---|---|---|---|\n")
	for i, f := range report.Findings {
		if i == maxCommentFindings {
			fmt.Fprintf(&b, "\n_%d more findings not shown._\n", len(report.Findings)-maxCommentFindings)
			break
		}
		fmt.Fprintf(&b, "| `%s` | %d | `%s` | %s |\n", f.File, f.Line, f.Code, strings.ReplaceAll(f.Message, "|", `\|`))
	}
	return b.String()
}
