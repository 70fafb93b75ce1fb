package guess

import (
	"context"
	"errors"
	"testing"
	"time"

	ffprobeLib "gopkg.in/vansante/go-ffprobe.v2"
)

func proberWith(tags map[string]interface{}, err error) *Prober {
	p := NewProber()
	p.probe = func(ctx context.Context, path string, extraOpts ...string) (*ffprobeLib.ProbeData, error) {
		if err != nil {
			return nil, err
		}
		return &ffprobeLib.ProbeData{Format: &ffprobeLib.Format{TagList: tags}}, nil
	}
	return p
}

func TestProberShowTags(t *testing.T) {
	p := proberWith(map[string]interface{}{
		"show":           "Show Name",
		"season_number":  "2",
		"episode_sort":   "7",
		"unrelated_data": 12,
	}, nil)

	g, ok := p.Guess(context.Background(), "/tv/file.mkv")
	if !ok {
		t.Fatal("Guess() ok = false, want true")
	}
	if g.Series != "Show Name" || g.Season != 2 || g.Episode != 7 {
		t.Errorf("Guess() = %+v, want Show Name S2E7", g)
	}
	if got := g.Confidence(FieldSeries); got != tagConfidence {
		t.Errorf("series confidence = %v, want %v", got, tagConfidence)
	}
}

func TestProberTitleFallback(t *testing.T) {
	p := proberWith(map[string]interface{}{"TITLE": "Show.Name.S03E04"}, nil)

	g, ok := p.Guess(context.Background(), "/tv/file.mkv")
	if !ok {
		t.Fatal("Guess() ok = false, want true")
	}
	if g.Series != "Show Name" || g.Season != 3 || g.Episode != 4 {
		t.Errorf("Guess() = %+v, want Show Name S3E4", g)
	}
}

func TestProberNoTags(t *testing.T) {
	p := proberWith(nil, nil)
	if _, ok := p.Guess(context.Background(), "/tv/file.mkv"); ok {
		t.Error("Guess() ok = true for untagged file, want false")
	}
}

func TestProberError(t *testing.T) {
	p := proberWith(nil, errors.New("ffprobe missing"))
	if _, ok := p.Guess(context.Background(), "/tv/file.mkv"); ok {
		t.Error("Guess() ok = true on probe failure, want false")
	}
}

func TestProberTimeout(t *testing.T) {
	p := NewProber()
	p.Timeout = time.Millisecond
	p.probe = func(ctx context.Context, path string, extraOpts ...string) (*ffprobeLib.ProbeData, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if _, ok := p.Guess(context.Background(), "/tv/file.mkv"); ok {
		t.Error("Guess() ok = true after timeout, want false")
	}
}
