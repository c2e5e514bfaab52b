package domain

// ConditionType discriminates how a notification rule's condition value is
// interpreted. Values match the remote catalog's wire format.
type ConditionType string

const (
	ConditionDirect          ConditionType = "Direct"
	ConditionActReached      ConditionType = "ActeReached"
	ConditionPpsReached      ConditionType = "PpsReached"
	ConditionScoreReached    ConditionType = "ScoreReached"
	ConditionItemBought      ConditionType = "ItemBought"
	ConditionCountInCategory ConditionType = "CountInCategory"
)

// NotificationRule is a declarative trigger evaluated against player state and
// derived metrics. Each rule fires at most once per installation; fired rule
// ids live in a persisted shown-set.
type NotificationRule struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Message        string        `json:"message"`
	ConditionType  ConditionType `json:"condition_type"`
	ConditionValue string        `json:"condition_value"`
}
