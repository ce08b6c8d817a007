package player

import (
	"errors"
	"testing"
)

var errMissing = errors.New("missing")

type fakeResolver map[string]bool

func (r fakeResolver) Resolve(name string) (string, error) {
	if !r[name] {
		return "", errMissing
	}
	return "/snd/" + name, nil
}

type startCall struct {
	path   string
	volume int
	done   func()
}

type fakeOutput struct {
	starts []startCall
	stops  int
}

func (o *fakeOutput) Start(path string, volume int, done func()) error {
	o.starts = append(o.starts, startCall{path: path, volume: volume, done: done})
	return nil
}

func (o *fakeOutput) Stop() { o.stops++ }

func (o *fakeOutput) finishLast() {
	o.starts[len(o.starts)-1].done()
}

func newTestSequencer(res fakeResolver) (*Sequencer, *fakeOutput, *[]uint64) {
	out := &fakeOutput{}
	var gens []uint64
	seq := NewSequencer(out, res, func(gen uint64) { gens = append(gens, gen) })
	return seq, out, &gens
}

func TestSequencerChainsSecondary(t *testing.T) {
	seq, out, gens := newTestSequencer(fakeResolver{"zil.mp3": true, "anons.mp3": true})
	started, err := seq.Play(Cue{
		Label:     "bell",
		Primary:   Step{Sound: "zil.mp3", Volume: 80},
		Secondary: &Step{Sound: "anons.mp3", Volume: 80},
	})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if started.Path != "/snd/zil.mp3" || seq.State() != PlayingPrimary {
		t.Fatalf("unexpected start %+v state %s", started, seq.State())
	}

	out.finishLast()
	if len(*gens) != 1 {
		t.Fatalf("expected one completion, got %v", *gens)
	}
	next, err := seq.Finished((*gens)[0])
	if err != nil || next == nil || !next.Secondary || next.Sound != "anons.mp3" {
		t.Fatalf("expected secondary start, got %+v %v", next, err)
	}
	if seq.State() != PlayingSecondary || out.starts[1].volume != 80 {
		t.Fatalf("unexpected state %s starts %+v", seq.State(), out.starts)
	}

	out.finishLast()
	if next, err := seq.Finished((*gens)[1]); next != nil || err != nil {
		t.Fatalf("expected nothing after secondary, got %+v %v", next, err)
	}
	if seq.State() != Idle {
		t.Fatalf("expected idle, got %s", seq.State())
	}
}

func TestSequencerDropsStaleCompletion(t *testing.T) {
	seq, out, gens := newTestSequencer(fakeResolver{"siren.mp3": true, "mars.mp3": true, "zil.mp3": true})
	if _, err := seq.Play(Cue{Primary: Step{Sound: "siren.mp3"}, Secondary: &Step{Sound: "mars.mp3"}}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	stale := out.starts[0].done

	if _, err := seq.Play(Cue{Primary: Step{Sound: "zil.mp3"}}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	stale()
	if next, err := seq.Finished((*gens)[0]); next != nil || err != nil {
		t.Fatalf("stale completion must be ignored, got %+v %v", next, err)
	}
	if seq.State() != PlayingPrimary {
		t.Fatalf("expected the new cue to keep playing, got %s", seq.State())
	}
	if len(out.starts) != 2 {
		t.Fatalf("pending march must be cancelled, starts %+v", out.starts)
	}
}

func TestSequencerOptionalPrimaryFallsThrough(t *testing.T) {
	seq, out, _ := newTestSequencer(fakeResolver{"mars.mp3": true})
	started, err := seq.Play(Cue{
		Primary:   Step{Sound: "", Optional: true},
		Secondary: &Step{Sound: "mars.mp3", Volume: 50},
	})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if started.Sound != "mars.mp3" || out.starts[0].volume != 50 {
		t.Fatalf("expected march to play directly, got %+v", started)
	}
}

func TestSequencerMissingFile(t *testing.T) {
	seq, out, _ := newTestSequencer(fakeResolver{})
	if _, err := seq.Play(Cue{Primary: Step{Sound: "yok.mp3"}}); !errors.Is(err, errMissing) {
		t.Fatalf("expected resolver error, got %v", err)
	}
	if seq.State() != Idle || len(out.starts) != 0 {
		t.Fatalf("missing file must leave the sequencer idle")
	}
}

func TestSequencerStop(t *testing.T) {
	seq, out, gens := newTestSequencer(fakeResolver{"siren.mp3": true, "mars.mp3": true})
	if _, err := seq.Play(Cue{Primary: Step{Sound: "siren.mp3"}, Secondary: &Step{Sound: "mars.mp3"}}); err != nil {
		t.Fatalf("Play: %v", err)
	}
	stopsBefore := out.stops
	seq.Stop()
	if out.stops != stopsBefore+1 || seq.State() != Idle {
		t.Fatalf("Stop must silence the output")
	}
	out.finishLast()
	if next, _ := seq.Finished((*gens)[0]); next != nil {
		t.Fatalf("stopped cue must not chain")
	}
}

func TestExecOutputArgs(t *testing.T) {
	o, err := NewExecOutput("")
	if err != nil {
		t.Fatalf("NewExecOutput: %v", err)
	}
	args := o.Args("/snd/zil 1.mp3", 140)
	want := []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-volume", "100", "/snd/zil 1.mp3"}
	if len(args) != len(want) {
		t.Fatalf("unexpected args %v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: expected %q, got %q", i, want[i], args[i])
		}
	}
}
