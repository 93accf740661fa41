package domain

import (
	"fmt"
	"sort"
	"time"
)

// SkillPrerequisite ребро графа: для SkillID нужен PrerequisiteSkillID
type SkillPrerequisite struct {
	SkillID             int64
	PrerequisiteSkillID int64
	CreatedAt           time.Time
}

// SkillGraph ориентированный граф зависимостей навыков (список смежности)
type SkillGraph struct {
	edges map[int64][]int64
}

// NewSkillGraph строит граф из списка ребер без проверки циклов
// Ребра из хранилища уже прошли проверку при вставке
func NewSkillGraph(prerequisites []*SkillPrerequisite) *SkillGraph {
	g := &SkillGraph{edges: make(map[int64][]int64)}
	for _, p := range prerequisites {
		g.edges[p.SkillID] = append(g.edges[p.SkillID], p.PrerequisiteSkillID)
	}
	return g
}

// AddEdge добавляет зависимость skill -> prerequisite
// Возвращает ErrPrerequisiteCycle, если prerequisite уже (транзитивно) зависит от skill
func (g *SkillGraph) AddEdge(skillID, prerequisiteID int64) error {
	if skillID == prerequisiteID {
		return fmt.Errorf("%w: skill %d cannot require itself", ErrPrerequisiteCycle, skillID)
	}
	if g.reachable(prerequisiteID, skillID) {
		return fmt.Errorf("%w: skill %d already depends on %d", ErrPrerequisiteCycle, prerequisiteID, skillID)
	}
	for _, existing := range g.edges[skillID] {
		if existing == prerequisiteID {
			return nil
		}
	}
	g.edges[skillID] = append(g.edges[skillID], prerequisiteID)
	return nil
}

// Prerequisites все транзитивные зависимости навыка, отсортированные по ID
func (g *SkillGraph) Prerequisites(skillID int64) []int64 {
	visited := map[int64]bool{skillID: true}
	queue := append([]int64(nil), g.edges[skillID]...)
	result := make([]int64, 0)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)
		queue = append(queue, g.edges[current]...)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

func (g *SkillGraph) reachable(from, to int64) bool {
	visited := make(map[int64]bool)
	stack := []int64{from}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == to {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, g.edges[current]...)
	}
	return false
}
