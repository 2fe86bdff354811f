package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-style/internal/filesource"
	"github.com/joeblew999/plat-style/internal/style"
)

type inspectReport struct {
	Name       string          `yaml:"name"`
	Center     []float64       `yaml:"center,omitempty,flow"`
	Zoom       *float64        `yaml:"zoom,omitempty"`
	Bearing    *float64        `yaml:"bearing,omitempty"`
	Pitch      *float64        `yaml:"pitch,omitempty"`
	Transition map[string]any  `yaml:"transition,omitempty"`
	Sprite     string          `yaml:"sprite,omitempty"`
	Glyphs     string          `yaml:"glyphs,omitempty"`
	Sources    []inspectSource `yaml:"sources"`
	Layers     []inspectLayer  `yaml:"layers"`
	Warnings   int             `yaml:"warnings"`
}

type inspectSource struct {
	ID    string `yaml:"id"`
	Type  string `yaml:"type"`
	URL   string `yaml:"url,omitempty"`
	InUse bool   `yaml:"in_use"`
}

type inspectLayer struct {
	ID     string `yaml:"id"`
	Type   string `yaml:"type"`
	Source string `yaml:"source,omitempty"`
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file|url>",
		Short: "Load a style document and print a YAML summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			return inspect(cmd.Context(), args[0], asJSON)
		},
	}
	cmd.Flags().Bool("json", false, "Print the normalized style JSON instead of a summary")
	return cmd
}

func inspect(ctx context.Context, target string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fs, url, err := inspectSourceFor(target)
	if err != nil {
		return err
	}
	data, err := filesource.Fetch(ctx, fs, filesource.Resource{Kind: filesource.KindStyle, URL: url})
	if err != nil {
		return err
	}

	logs := style.NewSlogObserver(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	warnings := 0
	obs := style.ObserverFunc(func(e style.Event) {
		if e.Severity >= style.SeverityWarning {
			warnings++
		}
		logs.Observe(e)
	})
	doc := style.New(fs, 1, style.WithObserver(obs))
	if err := doc.LoadJSON(data); err != nil {
		return err
	}

	if asJSON {
		out, err := doc.MarshalJSON()
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	out, err := yaml.Marshal(buildReport(doc, warnings))
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

// inspectSourceFor serves http(s) URLs remotely and anything else from the
// directory holding the file.
func inspectSourceFor(target string) (filesource.FileSource, string, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return filesource.NewHTTP(nil), target, nil
	}
	abs, err := filepath.Abs(strings.TrimPrefix(target, "file://"))
	if err != nil {
		return nil, "", err
	}
	return filesource.NewLocal(filepath.Dir(abs)), "file://" + filepath.Base(abs), nil
}

func buildReport(doc *style.Document, warnings int) inspectReport {
	cam := doc.DefaultCamera()
	r := inspectReport{
		Name:     doc.Name(),
		Zoom:     cam.Zoom,
		Bearing:  cam.Bearing,
		Pitch:    cam.Pitch,
		Sprite:   doc.SpriteURL(),
		Glyphs:   doc.GlyphsURL(),
		Warnings: warnings,
	}
	if cam.Center != nil {
		r.Center = []float64{cam.Center.Lng, cam.Center.Lat}
	}
	tr := doc.TransitionOptions()
	if tr.Duration != nil || tr.Delay != nil {
		r.Transition = map[string]any{}
		if tr.Duration != nil {
			r.Transition["duration_ms"] = tr.Duration.Milliseconds()
		}
		if tr.Delay != nil {
			r.Transition["delay_ms"] = tr.Delay.Milliseconds()
		}
	}
	for _, src := range doc.Sources() {
		r.Sources = append(r.Sources, inspectSource{
			ID:    src.ID,
			Type:  string(src.Type),
			URL:   src.URL,
			InUse: doc.SourceInUse(src.ID),
		})
	}
	for _, l := range doc.Layers() {
		r.Layers = append(r.Layers, inspectLayer{ID: l.ID, Type: string(l.Type), Source: l.Source})
	}
	return r
}
