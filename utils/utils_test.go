package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.57, Round2(10.567))
	assert.Equal(t, 10.56, Round2(10.564))
	assert.Equal(t, 10_000_000.0, Round2(120_000_000.0/12))
	assert.Equal(t, 0.0, Round2(0))
	assert.Equal(t, -3.33, Round2(-3.333))
}

type patchDTO struct {
	Code     *string  `json:"code"`
	Price    *float64 `json:"price"`
	StageId  *uint    `json:"stage_id"`
	Ignored  *string  `json:"-"`
	Untagged *string
}

func TestUpdatesFromPtrDTO(t *testing.T) {
	code := "B-07"
	price := 95_000_000.0

	t.Run("only non-nil tagged fields", func(t *testing.T) {
		updates := UpdatesFromPtrDTO(&patchDTO{Code: &code, Price: &price, Ignored: &code, Untagged: &code}, nil)
		assert.Equal(t, map[string]any{"code": "B-07", "price": 95_000_000.0}, updates)
	})

	t.Run("renames translate json keys to columns", func(t *testing.T) {
		var stage uint = 3
		updates := UpdatesFromPtrDTO(&patchDTO{StageId: &stage}, map[string]string{"stage_id": "project_stage_id"})
		assert.Equal(t, map[string]any{"project_stage_id": uint(3)}, updates)
	})

	t.Run("empty for nil fields and non-struct input", func(t *testing.T) {
		assert.Empty(t, UpdatesFromPtrDTO(&patchDTO{}, nil))
		assert.Empty(t, UpdatesFromPtrDTO("not a struct", nil))
	})
}

func TestNormalizePtrDTO(t *testing.T) {
	code := "  C-12  "
	price := 10.569
	dto := &patchDTO{Code: &code, Price: &price}

	NormalizePtrDTO(dto)

	assert.Equal(t, "C-12", *dto.Code)
	assert.Equal(t, 10.57, *dto.Price)
	assert.Nil(t, dto.StageId)
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 25, ParseIntDefault(" 25 ", 10))
	assert.Equal(t, 10, ParseIntDefault("", 10))
	assert.Equal(t, 10, ParseIntDefault("abc", 10))
	assert.Equal(t, 10, ParseIntDefault("-5", 10))
}
