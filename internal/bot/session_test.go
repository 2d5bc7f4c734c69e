package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reyarovenko/iMeal/internal/storage"
	"github.com/reyarovenko/iMeal/pkg/models"
)

func TestSessionStoreGetCreates(t *testing.T) {
	store := NewSessionStore()

	sess := store.Get(42)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, StateNone, sess.State)
	assert.Empty(t, sess.Lang)

	sess.Lang = "uk"
	assert.Equal(t, "uk", store.Get(42).Lang, "same session on repeat Get")
}

func TestSessionStoreSeparateUsers(t *testing.T) {
	store := NewSessionStore()
	store.Get(1).Lang = "uk"
	store.Get(2).Lang = "en"

	assert.Equal(t, "uk", store.Get(1).Lang)
	assert.Equal(t, "en", store.Get(2).Lang)
}

func TestSessionStoreReset(t *testing.T) {
	store := NewSessionStore()
	store.Get(42).Lang = "uk"

	store.Reset(42)
	assert.Empty(t, store.Get(42).Lang, "reset drops the language too")
}

func TestResetFlowKeepsLanguage(t *testing.T) {
	sess := &Session{
		UserID:   42,
		Lang:     "uk",
		State:    StateCalcGender,
		MealType: "🌅 Сніданок",
		Calc:     CalcScratch{Age: 25, Weight: 70, Height: 175},
		DeleteOffers: []storage.Positioned{
			{Entry: models.Entry{Description: "борщ"}, Position: 0},
		},
	}

	sess.ResetFlow()

	assert.Equal(t, "uk", sess.Lang)
	assert.Equal(t, StateNone, sess.State)
	assert.Empty(t, sess.MealType)
	assert.Zero(t, sess.Calc)
	assert.Nil(t, sess.DeleteOffers)
}
