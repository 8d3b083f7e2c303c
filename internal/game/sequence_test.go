package game

import "testing"

// seqProbe counts calls instead of moving anything.
type seqProbe struct {
	moveCalls  int
	moveNeeded int // calls until SeqMove reports arrival
	faceCalls  int
	said       []string
}

func (p *seqProbe) SeqMove(tx, ty float64, ctx *TickContext, dt float64) bool {
	p.moveCalls++
	return p.moveCalls >= p.moveNeeded
}

func (p *seqProbe) SeqFace(heading float64, ctx *TickContext, dt float64) bool {
	p.faceCalls++
	return true
}

func (p *seqProbe) SeqSay(text string, ctx *TickContext) {
	p.said = append(p.said, text)
}

func TestSequence_StepsAdvanceInOrder(t *testing.T) {
	probe := &seqProbe{moveNeeded: 2}
	sq := NewSequence([]SeqStep{
		{Kind: SeqWalkTo, X: 100, Y: 100},
		{Kind: SeqWait, Seconds: 0.2},
		{Kind: SeqSay, Text: "done here"},
	})
	ctx := &TickContext{}

	sq.Tick(probe, ctx, 0.1) // walking
	if sq.StepIndex() != 0 || probe.moveCalls != 1 {
		t.Fatalf("expected still walking after one tick, index=%d moves=%d", sq.StepIndex(), probe.moveCalls)
	}
	sq.Tick(probe, ctx, 0.1) // arrives
	if sq.StepIndex() != 1 {
		t.Fatalf("expected wait step after arrival, index=%d", sq.StepIndex())
	}
	sq.Tick(probe, ctx, 0.1) // wait 0.1/0.2
	sq.Tick(probe, ctx, 0.1) // wait 0.2/0.2, finishes
	if sq.StepIndex() != 2 {
		t.Fatalf("expected say step after the wait, index=%d", sq.StepIndex())
	}
	sq.Tick(probe, ctx, 0.1) // say fires
	if len(probe.said) != 1 || probe.said[0] != "done here" {
		t.Fatalf("expected one line said, got %v", probe.said)
	}
	if !sq.Done() {
		t.Fatal("sequence should be done after its last step")
	}
}

func TestSequence_AtMostOneStepPerTick(t *testing.T) {
	probe := &seqProbe{}
	sq := NewSequence([]SeqStep{
		{Kind: SeqSay, Text: "one"},
		{Kind: SeqSay, Text: "two"},
		{Kind: SeqSay, Text: "three"},
	})
	ctx := &TickContext{}

	sq.Tick(probe, ctx, 0.1)
	if len(probe.said) != 1 {
		t.Fatalf("instant steps must not chain within a tick, got %v", probe.said)
	}
	sq.Tick(probe, ctx, 0.1)
	sq.Tick(probe, ctx, 0.1)
	if len(probe.said) != 3 || probe.said[2] != "three" {
		t.Fatalf("expected all three lines over three ticks, got %v", probe.said)
	}
}

func TestSequence_LoopRewinds(t *testing.T) {
	probe := &seqProbe{moveNeeded: 1}
	sq := NewSequence([]SeqStep{
		{Kind: SeqWalkTo, X: 50, Y: 50},
		{Kind: SeqLoop},
	})
	ctx := &TickContext{}

	sq.Tick(probe, ctx, 0.1) // walk arrives, index 1
	sq.Tick(probe, ctx, 0.1) // loop rewinds, consumes the tick
	if sq.StepIndex() != 0 {
		t.Fatalf("loop should rewind to step 0, index=%d", sq.StepIndex())
	}
	sq.Tick(probe, ctx, 0.1) // walk again
	if probe.moveCalls != 2 {
		t.Fatalf("expected the walk step to run twice, got %d calls", probe.moveCalls)
	}
	if sq.Done() {
		t.Fatal("looping sequence never finishes")
	}
}

func TestSequence_WaitSpansTicks(t *testing.T) {
	probe := &seqProbe{}
	sq := NewSequence([]SeqStep{{Kind: SeqWait, Seconds: 0.25}})
	ctx := &TickContext{}

	sq.Tick(probe, ctx, 0.1)
	sq.Tick(probe, ctx, 0.1)
	if sq.Done() {
		t.Fatal("0.2s elapsed of 0.25s, wait should still hold")
	}
	sq.Tick(probe, ctx, 0.1)
	if !sq.Done() {
		t.Fatal("0.3s elapsed, wait should have finished")
	}
}

func TestSequence_EmptyFinishesImmediately(t *testing.T) {
	sq := NewSequence(nil)
	sq.Tick(&seqProbe{}, &TickContext{}, 0.1)
	if !sq.Done() {
		t.Fatal("empty sequence should report done on first tick")
	}
}

func TestSequence_ResetRewinds(t *testing.T) {
	probe := &seqProbe{}
	sq := NewSequence([]SeqStep{{Kind: SeqSay, Text: "hi"}})
	ctx := &TickContext{}

	sq.Tick(probe, ctx, 0.1)
	if !sq.Done() {
		t.Fatal("expected done after the single step")
	}
	sq.Reset()
	if sq.Done() || sq.StepIndex() != 0 {
		t.Fatal("reset should rewind and clear done")
	}
	sq.Tick(probe, ctx, 0.1)
	if len(probe.said) != 2 {
		t.Fatalf("expected the line twice after reset, got %v", probe.said)
	}
}

// A scripted guard runs its loop inside the full simulation: walk east, call
// it in, walk back, repeat. The script drives movement while the FSM stays
// in Idle the whole time.
func TestSequence_ScriptedGuardRunsInSim(t *testing.T) {
	ts := NewTestSim(
		WithWorldSize(600, 400),
		WithVerbose(true),
		WithScriptedGuard(100, 100,
			SeqStep{Kind: SeqWalkTo, X: 300, Y: 100},
			SeqStep{Kind: SeqSay, Text: "east end clear"},
			SeqStep{Kind: SeqWalkTo, X: 100, Y: 100},
			SeqStep{Kind: SeqSay, Text: "west end clear"},
			SeqStep{Kind: SeqLoop},
		),
		WithPlayer(40, 380),
	)
	g := ts.Guard("G1")

	reached := ts.RunUntil(func(ts *TestSim) bool {
		x, _ := g.Position()
		return x > 290
	}, 400)
	if reached < 0 {
		t.Fatal("scripted guard never reached the east waypoint")
	}
	returned := ts.RunUntil(func(ts *TestSim) bool {
		x, _ := g.Position()
		return x < 110
	}, 400)
	if returned < 0 {
		t.Fatal("scripted guard never walked back west")
	}
	if g.State() != StateIdle {
		t.Fatalf("a script runs inside Idle, got %s", g.State())
	}
	if !ts.SimLog.HasEntry("speech", "line", "east end clear") {
		t.Fatal("expected the east-end line in the log")
	}
	if !ts.SimLog.HasEntry("speech", "line", "west end clear") {
		t.Fatal("expected the west-end line in the log")
	}
}

// The same sequencer drives the player on headless runs.
func TestSequence_PlayerScriptDrivesMovement(t *testing.T) {
	ts := NewTestSim(
		WithWorldSize(400, 300),
		WithPlayerScript(
			SeqStep{Kind: SeqWalkTo, X: 200, Y: 60},
			SeqStep{Kind: SeqWait, Seconds: 0.2},
			SeqStep{Kind: SeqWalkTo, X: 200, Y: 240},
		),
		WithPlayer(40, 60),
	)
	p := ts.Player()

	ts.RunTicks(420)
	if d := dist(p.X, p.Y, 200, 240); d > arriveRadius {
		t.Fatalf("script should end at the south waypoint, %.1f away", d)
	}
	if p.IsMoving() {
		t.Fatal("player should be at rest once the script is done")
	}
}
