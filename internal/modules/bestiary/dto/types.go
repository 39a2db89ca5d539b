package dto

type MonsterOutput struct {
	ID           string
	Name         string
	Icon         string
	Description  string
	HP           int
	TriggerSites []string
	TriggerEvent string
}
