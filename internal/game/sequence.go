package game

// SeqStepKind names one kind of scripted step.
type SeqStepKind int

const (
	SeqWalkTo SeqStepKind = iota // move to (X,Y), done on arrival
	SeqFace                      // turn toward heading Arg, done when aligned
	SeqWait                      // hold for Seconds
	SeqSay                       // one line of speech, instantaneous
	SeqLoop                      // jump back to step 0
)

// SeqStep is one timed step record. Plain data; nothing suspends.
type SeqStep struct {
	Kind    SeqStepKind
	X, Y    float64
	Arg     float64 // heading for SeqFace
	Seconds float64 // dwell for SeqWait
	Text    string  // line for SeqSay
}

// seqSubject is anything a sequence can drive: guards and the player both
// qualify.
type seqSubject interface {
	SeqMove(tx, ty float64, ctx *TickContext, dt float64) bool
	SeqFace(heading float64, ctx *TickContext, dt float64) bool
	SeqSay(text string, ctx *TickContext)
}

// Sequence advances an ordered list of steps by accumulated tick time.
// It replaces suspended call stacks with an index and a clock.
type Sequence struct {
	steps   []SeqStep
	index   int
	elapsed float64
	done    bool
}

// NewSequence builds a sequence over the given steps.
func NewSequence(steps []SeqStep) *Sequence {
	return &Sequence{steps: steps}
}

// Done reports whether the sequence ran off its last step.
func (sq *Sequence) Done() bool { return sq.done }

// StepIndex returns the current step index, for inspection.
func (sq *Sequence) StepIndex() int { return sq.index }

// Reset rewinds to the first step.
func (sq *Sequence) Reset() {
	sq.index = 0
	sq.elapsed = 0
	sq.done = false
}

// Tick advances the current step by dt and moves on when it completes.
// At most one step completes per tick, so step effects stay ordered.
func (sq *Sequence) Tick(s seqSubject, ctx *TickContext, dt float64) {
	if sq.done || sq.index >= len(sq.steps) {
		sq.done = true
		return
	}
	st := sq.steps[sq.index]
	finished := false

	switch st.Kind {
	case SeqWalkTo:
		finished = s.SeqMove(st.X, st.Y, ctx, dt)
	case SeqFace:
		finished = s.SeqFace(st.Arg, ctx, dt)
	case SeqWait:
		sq.elapsed += dt
		finished = sq.elapsed >= st.Seconds
	case SeqSay:
		s.SeqSay(st.Text, ctx)
		finished = true
	case SeqLoop:
		sq.index = 0
		sq.elapsed = 0
		return
	}

	if finished {
		sq.index++
		sq.elapsed = 0
		if sq.index >= len(sq.steps) {
			sq.done = true
		}
	}
}

// --- Guard as a sequence subject ---

func (g *Guard) SeqMove(tx, ty float64, ctx *TickContext, dt float64) bool {
	return g.moveToward(tx, ty, ctx.Tuning.Guard.PatrolSpeed, ctx, dt)
}

func (g *Guard) SeqFace(heading float64, ctx *TickContext, dt float64) bool {
	g.vision.UpdateHeading(heading, ctx.Tuning.Guard.TurnRate*dt)
	return normalizeAngle(g.vision.Heading-heading) == 0
}

func (g *Guard) SeqSay(text string, ctx *TickContext) {
	g.say(text, ctx)
}

// SetScript attaches a step sequence; only the Scripted archetype runs it.
func (g *Guard) SetScript(steps []SeqStep) {
	g.seq = NewSequence(steps)
}
