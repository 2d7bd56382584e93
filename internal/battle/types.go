package battle

import (
	"time"

	"github.com/abhisek/quizquest/internal/skills"
)

// AnimationType names one step of the animation pipeline.
type AnimationType string

const (
	AnimHeroAttack      AnimationType = "hero_attack"
	AnimHeroHurt        AnimationType = "hero_hurt"
	AnimMonsterAttack   AnimationType = "monster_attack"
	AnimMonsterHurt     AnimationType = "monster_hurt"
	AnimSkillCast       AnimationType = "skill_cast"
	AnimStageTransition AnimationType = "stage_transition"
)

// Animation is the single animation currently playing.
type Animation struct {
	Type      AnimationType
	Skill     *skills.Skill
	StartTime time.Time
	Duration  time.Duration
}

// Action is the most recent combat action.
type Action string

const (
	ActionNone    Action = ""
	ActionAttack  Action = "attack"
	ActionSkill   Action = "skill"
	ActionHurt    Action = "hurt"
	ActionVictory Action = "victory"
	ActionDefeat  Action = "defeat"
)

// Monster is an opponent. HP is scaled when spawned.
type Monster struct {
	ID     string
	Name   string
	BaseHP int
	Level  int
}

// State is a snapshot of the battle for renderers.
type State struct {
	IsActive          bool
	Streak            int
	MaxStreak         int
	HeroHP            int
	HeroMaxHP         int
	MonsterHP         int
	MonsterMaxHP      int
	CurrentMonster    *Monster
	MonstersDefeated  int
	QuestionsAnswered int
	CurrentAnimation  *Animation
	CurrentDialogue   string
	PendingSkill      *skills.Skill
	LastAction        Action
	LastDamage        int
}

func (s State) clone() State {
	if s.CurrentMonster != nil {
		m := *s.CurrentMonster
		s.CurrentMonster = &m
	}
	if s.CurrentAnimation != nil {
		a := *s.CurrentAnimation
		if a.Skill != nil {
			sk := *a.Skill
			a.Skill = &sk
		}
		s.CurrentAnimation = &a
	}
	if s.PendingSkill != nil {
		sk := *s.PendingSkill
		s.PendingSkill = &sk
	}
	return s
}

// DefaultMonsters is the spawn rotation. The n-th spawn uses
// DefaultMonsters[n % len].
var DefaultMonsters = []Monster{
	{ID: "slime", Name: "Syntax Slime", BaseHP: 45},
	{ID: "goblin", Name: "Goblin of Guesswork", BaseHP: 60},
	{ID: "skeleton", Name: "Skeleton of Forgetting", BaseHP: 75},
	{ID: "wraith", Name: "Wraith of Doubt", BaseHP: 90},
	{ID: "golem", Name: "Cram Golem", BaseHP: 110},
	{ID: "dragon", Name: "Exam Dragon", BaseHP: 150},
}
