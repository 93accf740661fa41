package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSkillGraph_Prerequisites(t *testing.T) {
	g := NewSkillGraph([]*SkillPrerequisite{
		{SkillID: 3, PrerequisiteSkillID: 2},
		{SkillID: 2, PrerequisiteSkillID: 1},
		{SkillID: 3, PrerequisiteSkillID: 4},
	})

	assert.Equal(t, []int64{1, 2, 4}, g.Prerequisites(3))
	assert.Equal(t, []int64{1}, g.Prerequisites(2))
	assert.Empty(t, g.Prerequisites(1))
}

func TestSkillGraph_AddEdgeRejectsCycles(t *testing.T) {
	g := NewSkillGraph(nil)

	assert.NoError(t, g.AddEdge(3, 2))
	assert.NoError(t, g.AddEdge(2, 1))

	assert.ErrorIs(t, g.AddEdge(1, 3), ErrPrerequisiteCycle)
	assert.ErrorIs(t, g.AddEdge(5, 5), ErrPrerequisiteCycle)

	// повторное ребро не дублируется
	assert.NoError(t, g.AddEdge(3, 2))
	assert.Equal(t, []int64{1, 2}, g.Prerequisites(3))
}
