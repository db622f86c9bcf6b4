package output

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/ivlev/excalidraw-animate/internal/director"
	"github.com/ivlev/excalidraw-animate/internal/engine"
)

const (
	IndexFile  = "index.html"
	QRCodeFile = "share.png"
	QRCodeSize = 256
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>body{margin:0;background:#fff}object{display:block;margin:0 auto}</style>
</head>
<body>
{{- range .Files}}
<object type="image/svg+xml" data="{{.}}"></object>
{{- end}}
{{- if .QRCode}}
<p><img src="{{.QRCode}}" alt="share link" width="128" height="128"></p>
{{- end}}
</body>
</html>
`))

// Publisher writes a result set and its timeline into one run directory.
type Publisher struct {
	Dir string
	log zerolog.Logger
}

// NewPublisher places the run directory under outputDir, named after the
// source and the current time.
func NewPublisher(outputDir, name string, log zerolog.Logger) *Publisher {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return &Publisher{
		Dir: filepath.Join(outputDir, fmt.Sprintf("%s_%s", director.SafeName(name), timestamp)),
		log: log.With().Str("component", "publisher").Logger(),
	}
}

// DiagramFile names the SVG of the i-th result.
func DiagramFile(i int) string {
	return fmt.Sprintf("diagram_%02d.svg", i+1)
}

// Publish writes every result as SVG, then the timeline manifest and an
// index page. Timeline items get their file names filled in.
func (p *Publisher) Publish(ctx context.Context, results []engine.RenderResult, tl *director.Timeline) error {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := make([]string, len(results))
	for i, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		files[i] = DiagramFile(i)
		if err := writeSVG(filepath.Join(p.Dir, files[i]), res); err != nil {
			return fmt.Errorf("write %s: %w", files[i], err)
		}
		if i < len(tl.Items) {
			tl.Items[i].File = files[i]
		}
		p.log.Debug().Str("file", files[i]).Int64("finishedMs", res.FinishedMs).Msg("diagram written")
	}

	if err := director.WriteTimeline(tl, filepath.Join(p.Dir, director.TimelineFile)); err != nil {
		return fmt.Errorf("write timeline: %w", err)
	}

	qr := ""
	if _, err := os.Stat(filepath.Join(p.Dir, QRCodeFile)); err == nil {
		qr = QRCodeFile
	}
	if err := p.writeIndex(tl.Source, files, qr); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	p.log.Info().Str("dir", p.Dir).Int("diagrams", len(files)).Msg("published")
	return nil
}

// WriteQRCode writes link as a PNG QR code into the run directory.
func (p *Publisher) WriteQRCode(link string) (string, error) {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(p.Dir, QRCodeFile)
	return path, WriteQRCode(link, path)
}

func WriteQRCode(link, path string) error {
	return qrcode.WriteFile(link, qrcode.Medium, QRCodeSize, path)
}

func writeSVG(path string, res engine.RenderResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := res.Doc.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (p *Publisher) writeIndex(title string, files []string, qr string) error {
	f, err := os.Create(filepath.Join(p.Dir, IndexFile))
	if err != nil {
		return err
	}
	data := struct {
		Title  string
		Files  []string
		QRCode string
	}{title, files, qr}
	if err := indexTemplate.Execute(f, data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
