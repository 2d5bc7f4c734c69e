package agent

import (
	"github.com/reyarovenko/iMeal/internal/storage"
	"github.com/reyarovenko/iMeal/pkg/models"
)

// Status is the coarse tag every agent operation returns. The dialogue
// layer renders a distinct call-to-action for no_data/no_profile instead of
// a generic error.
type Status string

const (
	StatusSuccess       Status = "success"
	StatusError         Status = "error"
	StatusNoData        Status = "no_data"
	StatusNoProfile     Status = "no_profile"
	StatusUnknownAction Status = "unknown_action"
)

// Result is the tagged union returned by every agent operation. Agent
// operations never raise across the Coordinator boundary; the dialogue
// layer switches on the concrete type.
type Result interface {
	ResultStatus() Status
}

type AddMealResult struct {
	Status  Status
	KBJU    models.KBJU
	Message string
}

func (r AddMealResult) ResultStatus() Status { return r.Status }

type DailySummaryResult struct {
	Status  Status
	Entries []models.Entry
	Summary string
	Message string
}

func (r DailySummaryResult) ResultStatus() Status { return r.Status }

// DeleteListResult carries the offer snapshot: today's entries with their
// absolute store positions. Nothing is deleted yet.
type DeleteListResult struct {
	Status  Status
	Offers  []storage.Positioned
	Message string
}

func (r DeleteListResult) ResultStatus() Status { return r.Status }

type ConfirmDeleteResult struct {
	Status  Status
	Deleted *models.Entry
	Message string
}

func (r ConfirmDeleteResult) ResultStatus() Status { return r.Status }

type CalculateResult struct {
	Status   Status
	Calories models.Calories
	Data     models.Biometrics
	Message  string
}

func (r CalculateResult) ResultStatus() Status { return r.Status }

type RecommendationsResult struct {
	Status          Status
	Recommendations string
}

func (r RecommendationsResult) ResultStatus() Status { return r.Status }

type ProfileResult struct {
	Status  Status
	Profile *models.Profile
}

func (r ProfileResult) ResultStatus() Status { return r.Status }

type UnknownActionResult struct{}

func (UnknownActionResult) ResultStatus() Status { return StatusUnknownAction }
