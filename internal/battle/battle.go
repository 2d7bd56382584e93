package battle

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/abhisek/quizquest/internal/skills"
)

// Rand is the random source for skills and dialogue.
type Rand interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// step is one entry of the animation pipeline. A step with an empty Type
// is a plain delay. done runs when the step completes or is flushed.
type step struct {
	anim     AnimationType
	skill    *skills.Skill
	duration time.Duration
	done     func(b *Battle)
}

// Battle turns quiz answers into combat. State changes are applied
// synchronously in TriggerAnswer; animations trail behind on a single
// pending timer. Battle is safe for concurrent use since timer callbacks
// run on their own goroutines.
type Battle struct {
	mu sync.Mutex

	policy   *skills.Policy
	cfg      Config
	clock    Clock
	rng      Rand
	monsters []Monster
	dialogue Dialogue
	onChange func(State)
	logger   *slog.Logger

	state State

	queue  []step
	timer  Timer
	gen    uint64
	closed bool
}

// Option configures a Battle.
type Option func(*Battle)

// WithConfig sets combat constants and durations.
func WithConfig(cfg Config) Option {
	return func(b *Battle) { b.cfg = cfg }
}

// WithClock sets the time source and timer factory.
func WithClock(c Clock) Option {
	return func(b *Battle) { b.clock = c }
}

// WithRand sets the random source for dialogue selection.
func WithRand(r Rand) Option {
	return func(b *Battle) { b.rng = r }
}

// WithMonsters replaces the spawn rotation.
func WithMonsters(m []Monster) Option {
	return func(b *Battle) { b.monsters = m }
}

// WithDialogue replaces the dialogue pools.
func WithDialogue(d Dialogue) Option {
	return func(b *Battle) { b.dialogue = d }
}

// OnChange registers a listener called with a snapshot after every change.
// The listener runs without the battle lock held.
func OnChange(fn func(State)) Option {
	return func(b *Battle) { b.onChange = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Battle) { b.logger = l }
}

// New creates an inactive battle. The first TriggerAnswer starts it.
func New(policy *skills.Policy, opts ...Option) *Battle {
	b := &Battle{
		policy:   policy,
		cfg:      DefaultConfig(),
		clock:    RealClock{},
		rng:      globalRand{},
		monsters: DefaultMonsters,
		dialogue: DefaultDialogue(),
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	if b.policy == nil {
		b.policy = skills.DefaultPolicy()
	}
	return b
}

// Snapshot returns a copy of the current state.
func (b *Battle) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

// Start begins a fresh run: full hero HP, zero streak and a newly spawned
// monster scaled by the monsters already defeated.
func (b *Battle) Start() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.cancelLocked()
	b.queue = nil
	b.startLocked()
	snap := b.state.clone()
	b.mu.Unlock()
	b.notify(snap)
}

// TriggerAnswer records one quiz answer.
func (b *Battle) TriggerAnswer(isCorrect bool) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if !b.state.IsActive {
		b.startLocked()
	}
	b.flushLocked()

	if isCorrect {
		b.correctLocked()
	} else {
		b.incorrectLocked()
	}
	b.runNextLocked()
	snap := b.state.clone()
	b.mu.Unlock()
	b.notify(snap)
}

// Close cancels the pending timer and drops queued steps. Later calls are
// no-ops.
func (b *Battle) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.cancelLocked()
	b.queue = nil
	b.state.CurrentAnimation = nil
}

func (b *Battle) startLocked() {
	defeated := b.state.MonstersDefeated
	b.state = State{
		IsActive:         true,
		HeroHP:           b.cfg.HeroMaxHP,
		HeroMaxHP:        b.cfg.HeroMaxHP,
		MonstersDefeated: defeated,
		MaxStreak:        b.state.MaxStreak,
	}
	b.spawnLocked()
	b.say(EventStart)
}

// spawnLocked brings in the next monster with HP scaled by defeats.
func (b *Battle) spawnLocked() {
	if len(b.monsters) == 0 {
		b.monsters = DefaultMonsters
	}
	n := b.state.MonstersDefeated
	m := b.monsters[n%len(b.monsters)]
	m.Level = n + 1
	hp := int(math.Round(float64(m.BaseHP) * (1 + b.cfg.MonsterScaling*float64(n))))
	b.state.CurrentMonster = &m
	b.state.MonsterHP = hp
	b.state.MonsterMaxHP = hp
	b.state.PendingSkill = nil
}

func (b *Battle) correctLocked() {
	s := &b.state
	s.Streak++
	s.QuestionsAnswered++
	s.MaxStreak = max(s.MaxStreak, s.Streak)

	damage := b.cfg.HeroDamage
	first := step{anim: AnimHeroAttack, duration: b.cfg.HeroAttack}
	s.LastAction = ActionAttack
	event := EventAttack

	if b.policy.ShouldTrigger(s.Streak) {
		if tier, ok := b.policy.TierFor(s.Streak); ok {
			if sk, ok := b.policy.RandomSkill(tier); ok {
				damage = int(math.Round(float64(b.cfg.HeroDamage) * b.policy.Multiplier(tier)))
				s.PendingSkill = &sk
				s.LastAction = ActionSkill
				first = step{
					anim:     AnimSkillCast,
					skill:    &sk,
					duration: sk.Duration,
					done:     func(b *Battle) { b.state.PendingSkill = nil },
				}
				b.logger.Debug("skill cast", "skill", sk.ID, "tier", tier, "streak", s.Streak, "damage", damage)
			}
		}
	}

	s.LastDamage = damage
	s.MonsterHP = max(s.MonsterHP-damage, 0)
	b.queue = append(b.queue,
		first,
		step{anim: AnimMonsterHurt, duration: b.cfg.MonsterHurt},
	)

	if s.MonsterHP == 0 {
		s.MonstersDefeated++
		s.LastAction = ActionVictory
		event = EventVictory
		b.queue = append(b.queue, step{
			anim:     AnimStageTransition,
			duration: b.cfg.StageTransition,
			done: func(b *Battle) {
				b.spawnLocked()
				b.say(EventStart)
			},
		})
	}

	if s.PendingSkill != nil && event != EventVictory {
		s.CurrentDialogue = s.PendingSkill.Dialogue
		return
	}
	b.say(event)
}

func (b *Battle) incorrectLocked() {
	s := &b.state
	s.Streak = 0
	s.QuestionsAnswered++
	s.LastDamage = b.cfg.MonsterDamage
	s.HeroHP = max(s.HeroHP-b.cfg.MonsterDamage, 0)
	s.LastAction = ActionHurt

	b.queue = append(b.queue,
		step{anim: AnimMonsterAttack, duration: b.cfg.MonsterAttack},
		step{anim: AnimHeroHurt, duration: b.cfg.HeroHurt},
	)

	if s.HeroHP == 0 {
		s.LastAction = ActionDefeat
		b.say(EventDefeat)
		b.queue = append(b.queue, step{
			duration: b.cfg.RestartDelay,
			done: func(b *Battle) {
				b.state.MonstersDefeated = 0
				b.state.MaxStreak = 0
				b.startLocked()
			},
		})
		return
	}
	b.say(EventHurt)
}

// flushLocked applies every queued step's effect immediately so a new
// answer always acts on a settled state.
func (b *Battle) flushLocked() {
	b.cancelLocked()
	queue := b.queue
	b.queue = nil
	for _, st := range queue {
		if st.done != nil {
			st.done(b)
		}
	}
	b.state.CurrentAnimation = nil
}

// runNextLocked starts the head of the queue, or clears the animation
// when the queue is empty.
func (b *Battle) runNextLocked() {
	if len(b.queue) == 0 {
		b.state.CurrentAnimation = nil
		return
	}
	head := b.queue[0]
	b.state.CurrentAnimation = nil
	if head.anim != "" {
		b.state.CurrentAnimation = &Animation{
			Type:      head.anim,
			Skill:     head.skill,
			StartTime: b.clock.Now(),
			Duration:  head.duration,
		}
	}

	b.gen++
	gen := b.gen
	b.timer = b.clock.AfterFunc(head.duration, func() { b.complete(gen) })
}

// complete is the timer callback for the head step.
func (b *Battle) complete(gen uint64) {
	b.mu.Lock()
	if b.closed || gen != b.gen || len(b.queue) == 0 {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	head := b.queue[0]
	b.queue = b.queue[1:]
	if head.done != nil {
		head.done(b)
	}
	b.runNextLocked()
	snap := b.state.clone()
	b.mu.Unlock()
	b.notify(snap)
}

func (b *Battle) cancelLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.gen++
}

func (b *Battle) say(event Event) {
	b.state.CurrentDialogue = b.dialogue.pick(event, b.state.CurrentDialogue, b.rng)
}

func (b *Battle) notify(s State) {
	if b.onChange != nil {
		b.onChange(s)
	}
}
