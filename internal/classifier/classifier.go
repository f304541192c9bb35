package classifier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"cropcare-service/internal/config"
	"cropcare-service/internal/models"
)

type Classifier interface {
	Classify(ctx context.Context, imagePath string) (*models.Verdict, error)
}

// rawPrediction is the JSON object the prediction script prints on stdout.
type rawPrediction struct {
	Detected   string   `json:"detected"`
	Confidence float64  `json:"confidence"`
	Status     string   `json:"status"`
	Disease    string   `json:"disease"`
	Prevention []string `json:"prevention"`
	Causes     []string `json:"causes"`
}

type commandRunner func(ctx context.Context, dir, name string, args ...string) (stdout, stderr []byte, err error)

// ProcessClassifier runs the external prediction script once per image.
type ProcessClassifier struct {
	python  string
	script  string
	timeout time.Duration
	catalog *Catalog
	run     commandRunner

	observer DurationObserver
}

type DurationObserver interface {
	ObserveClassifier(d time.Duration, err error)
}

func NewProcessClassifier(cfg config.ClassifierConfig, catalog *Catalog) *ProcessClassifier {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &ProcessClassifier{
		python:  cfg.Python,
		script:  cfg.Script,
		timeout: cfg.Timeout,
		catalog: catalog,
		run:     runCommand,
	}
}

func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = 2 * time.Second
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func (p *ProcessClassifier) ObserveWith(o DurationObserver) {
	p.observer = o
}

// Classify returns a structured verdict, or an error wrapping
// models.ErrUpstreamFailure when the script could not produce one.
func (p *ProcessClassifier) Classify(ctx context.Context, imagePath string) (*models.Verdict, error) {
	start := time.Now()
	verdict, err := p.classify(ctx, imagePath)
	if p.observer != nil {
		p.observer.ObserveClassifier(time.Since(start), err)
	}
	return verdict, err
}

func (p *ProcessClassifier) classify(ctx context.Context, imagePath string) (*models.Verdict, error) {
	absImage, err := filepath.Abs(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image path: %v", models.ErrUpstreamFailure, err)
	}
	absScript, err := filepath.Abs(p.script)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid classifier script path: %v", models.ErrUpstreamFailure, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	stdout, stderr, err := p.run(ctx, filepath.Dir(absScript), p.python, absScript, absImage)
	slog.Info("Classifier process finished",
		"image", filepath.Base(absImage),
		"duration", time.Since(start),
	)

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: classifier timed out after %s", models.ErrUpstreamFailure, p.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: classifier failed: %v: %s", models.ErrUpstreamFailure, err, diagnostic(stderr, stdout))
	}

	raw, err := parseOutput(stdout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", models.ErrUpstreamFailure, err, diagnostic(stderr, stdout))
	}
	return toVerdict(raw, p.catalog), nil
}

// parseOutput picks the last JSON object line from stdout. The script may
// print plain diagnostic lines before it, or nothing at all.
func parseOutput(stdout []byte) (*rawPrediction, error) {
	var found *rawPrediction
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var raw rawPrediction
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			continue
		}
		found = &raw
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read classifier output: %w", err)
	}
	if found == nil {
		return nil, errors.New("classifier produced no prediction")
	}
	if strings.TrimSpace(found.Detected) == "" {
		return nil, errors.New("classifier prediction has no label")
	}
	return found, nil
}

func toVerdict(raw *rawPrediction, catalog *Catalog) *models.Verdict {
	label := strings.TrimSpace(raw.Detected)
	status := normalizeStatus(raw.Status)
	name := strings.TrimSpace(raw.Disease)
	causes := raw.Causes
	prevention := raw.Prevention

	if info, ok := catalog.Lookup(label); ok {
		if status == models.VerdictUnknown {
			status = normalizeStatus(info.Status)
		}
		if name == "" || name == label {
			name = info.Name
		}
		if len(causes) == 0 {
			causes = info.Causes
		}
		if len(prevention) == 0 {
			prevention = info.Prevention
		}
	}

	if status == models.VerdictUnknown && strings.HasSuffix(strings.ToLower(label), "healthy") {
		status = models.VerdictHealthy
	}
	if name == "" || name == label {
		name = humanizeLabel(label)
	}

	return &models.Verdict{
		Status:             status,
		Detected:           name,
		Confidence:         clampConfidence(raw.Confidence),
		Reason:             joinNonEmpty(causes),
		PreventiveMeasures: joinNonEmpty(prevention),
		Label:              label,
	}
}

func normalizeStatus(s string) models.VerdictStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "healthy":
		return models.VerdictHealthy
	case "unhealthy":
		return models.VerdictUnhealthy
	default:
		return models.VerdictUnknown
	}
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func joinNonEmpty(parts []string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

func diagnostic(stderr, stdout []byte) string {
	text := strings.TrimSpace(string(stderr))
	if text == "" {
		text = strings.TrimSpace(string(stdout))
	}
	if text == "" {
		return "no diagnostic output"
	}
	const limit = 512
	if len(text) > limit {
		text = text[:limit] + "..."
	}
	return text
}
