package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Type is the closed set of business events that produce a notification.
type Type int

const (
	TypeWelcome Type = iota
	TypeEmotionLogged
	TypeStreakMilestone
	TypeFlowerBloomed
	TypeGardenLevelUp
	TypeEmpathyReceived
	TypeCommentReceived
	TypeDailyReminder
	TypeWeeklyReport
	TypeShareCardReady
	TypePinLockChanged
	TypeSystemNotice

	typeCount
)

// Category groups types for filtering in the list view.
type Category string

const (
	CategoryGarden    Category = "garden"
	CategoryCommunity Category = "community"
	CategoryReminder  Category = "reminder"
	CategoryAccount   Category = "account"
	CategorySystem    Category = "system"
)

// Template is the display text for one type. Title and Message may contain
// {key} placeholders filled from Meta.
type Template struct {
	Name     string
	Icon     string
	Title    string
	Message  string
	Category Category
}

var templates = [...]Template{
	TypeWelcome:         {"welcome", "🌱", "마음,씨에 오신 걸 환영해요", "오늘의 마음을 기록하고 나만의 정원을 가꿔 보세요.", CategoryAccount},
	TypeEmotionLogged:   {"emotion_logged", "📝", "오늘의 마음이 기록되었어요", "{emotion} 마음을 잘 돌봐 주었어요.", CategoryGarden},
	TypeStreakMilestone: {"streak_milestone", "🔥", "{days}일 연속 기록!", "꾸준히 마음을 들여다본 당신, 정말 멋져요.", CategoryGarden},
	TypeFlowerBloomed:   {"flower_bloomed", "🌸", "꽃이 피었어요", "{flower} 꽃이 활짝 피었어요. 정원에서 확인해 보세요.", CategoryGarden},
	TypeGardenLevelUp:   {"garden_level_up", "🌳", "정원이 자랐어요", "정원이 {level}단계가 되었어요.", CategoryGarden},
	TypeEmpathyReceived: {"empathy_received", "💚", "공감을 받았어요", "공감숲에서 누군가 당신의 마음에 공감했어요.", CategoryCommunity},
	TypeCommentReceived: {"comment_received", "💬", "새 응원 메시지", "공감숲에 새 응원 메시지가 도착했어요.", CategoryCommunity},
	TypeDailyReminder:   {"daily_reminder", "⏰", "오늘의 마음은 어떤가요?", "잠깐 멈춰서 지금의 감정을 기록해 보세요.", CategoryReminder},
	TypeWeeklyReport:    {"weekly_report", "📊", "주간 마음 리포트", "지난 한 주의 감정 흐름을 정리했어요.", CategoryReminder},
	TypeShareCardReady:  {"share_card_ready", "🖼️", "공유 카드가 준비되었어요", "나의 꽃 카드를 친구에게 보여주세요.", CategoryGarden},
	TypePinLockChanged:  {"pin_lock_changed", "🔒", "잠금 설정이 변경되었어요", "앱 잠금 PIN이 {action}되었어요.", CategoryAccount},
	TypeSystemNotice:    {"system_notice", "📢", "{title}", "{message}", CategorySystem},
}

// Adding a Type without a template (or the reverse) fails to compile.
var _ = [1]struct{}{}[len(templates)-int(typeCount)]

// Types lists every defined type in declaration order.
func Types() []Type {
	out := make([]Type, 0, typeCount)
	for t := Type(0); t < typeCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

func (t Type) Template() (Template, bool) {
	if !t.Valid() {
		return Template{}, false
	}
	return templates[t], true
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return templates[t].Name
}

// ParseType maps a wire name to its Type.
func ParseType(name string) (Type, error) {
	for t := Type(0); t < typeCount; t++ {
		if templates[t].Name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	return []byte(templates[t].Name), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Type) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	return templates[t].Name, nil
}

func (t *Type) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	}
	return fmt.Errorf("type: unsupported source %T", src)
}

func render(text string, meta Meta) string {
	if len(meta) == 0 || !strings.Contains(text, "{") {
		return text
	}
	pairs := make([]string, 0, len(meta)*2)
	for k, v := range meta {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
