package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// SavedPlanModel represents the saved_plans table
type SavedPlanModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Name      string    `gorm:"column:name;size:255;not null;index"`
	DatasetID string    `gorm:"column:dataset_id;size:255;not null"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (SavedPlanModel) TableName() string {
	return "saved_plans"
}

// payload is the stored JSON form of a plan's inputs. Every rational in it
// carries RationalTag.
type payload struct {
	Settings   map[string]settingsPayload `json:"settings,omitempty"`
	Adjustment adjustmentPayload          `json:"adjustment"`
	Objectives []objectivePayload         `json:"objectives,omitempty"`
}

type settingsPayload struct {
	Excluded bool                   `json:"excluded,omitempty"`
	Machine  string                 `json:"machine,omitempty"`
	Fuel     string                 `json:"fuel,omitempty"`
	Modules  []string               `json:"modules,omitempty"`
	Beacons  []graph.BeaconSettings `json:"beacons,omitempty"`
	Cost     *taggedRational        `json:"cost,omitempty"`
}

type adjustmentPayload struct {
	MiningBonus       taggedRational `json:"miningBonus"`
	ResearchBonus     taggedRational `json:"researchBonus"`
	NetProductionOnly bool           `json:"netProductionOnly,omitempty"`
}

type objectivePayload struct {
	Item string         `json:"item"`
	Rate taggedRational `json:"rate"`
	Type objective.Type `json:"type"`
}

func encodePayload(plan *SavedPlan) (string, error) {
	p := payload{
		Adjustment: adjustmentPayload{
			MiningBonus:       taggedRational(plan.Adjustment.MiningBonus),
			ResearchBonus:     taggedRational(plan.Adjustment.ResearchBonus),
			NetProductionOnly: plan.Adjustment.NetProductionOnly,
		},
	}
	if len(plan.Settings) > 0 {
		p.Settings = make(map[string]settingsPayload, len(plan.Settings))
		for id, s := range plan.Settings {
			sp := settingsPayload{
				Excluded: s.Excluded,
				Machine:  s.Machine,
				Fuel:     s.Fuel,
				Modules:  s.Modules,
				Beacons:  s.Beacons,
			}
			if s.Cost != nil {
				cost := taggedRational(*s.Cost)
				sp.Cost = &cost
			}
			p.Settings[id] = sp
		}
	}
	for _, o := range plan.Objectives {
		p.Objectives = append(p.Objectives, objectivePayload{Item: o.Item, Rate: taggedRational(o.Rate), Type: o.Type})
	}

	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan payload: %w", err)
	}
	return string(data), nil
}

func decodePayload(data string, plan *SavedPlan) error {
	var p payload
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return fmt.Errorf("failed to unmarshal plan payload: %w", err)
	}

	plan.Adjustment = graph.AdjustmentData{
		MiningBonus:       rational.Rational(p.Adjustment.MiningBonus),
		ResearchBonus:     rational.Rational(p.Adjustment.ResearchBonus),
		NetProductionOnly: p.Adjustment.NetProductionOnly,
	}
	plan.Settings = nil
	if len(p.Settings) > 0 {
		plan.Settings = make(map[string]graph.RecipeSettings, len(p.Settings))
		for id, sp := range p.Settings {
			s := graph.RecipeSettings{
				Excluded: sp.Excluded,
				Machine:  sp.Machine,
				Fuel:     sp.Fuel,
				Modules:  sp.Modules,
				Beacons:  sp.Beacons,
			}
			if sp.Cost != nil {
				cost := rational.Rational(*sp.Cost)
				s.Cost = &cost
			}
			plan.Settings[id] = s
		}
	}
	plan.Objectives = nil
	for _, o := range p.Objectives {
		plan.Objectives = append(plan.Objectives, objective.Objective{Item: o.Item, Rate: rational.Rational(o.Rate), Type: o.Type})
	}
	return nil
}
