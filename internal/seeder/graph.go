package seeder

import "fmt"

// DependencyGraph orders tables so that every table comes after the tables
// it references. Ties keep declaration order.
type DependencyGraph struct {
	deps     map[string][]string
	declared []string
}

func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		deps: make(map[string][]string),
	}
}

func (g *DependencyGraph) AddTable(name string, dependencies []string) {
	if _, ok := g.deps[name]; !ok {
		g.declared = append(g.declared, name)
	}
	g.deps[name] = dependencies
}

// BuildInsertionOrder returns the run order. Dependencies on tables that were
// never added are ignored.
func (g *DependencyGraph) BuildInsertionOrder() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(tableName string) error {
		if temp[tableName] {
			return fmt.Errorf("circular dependency detected involving table: %s", tableName)
		}
		if visited[tableName] {
			return nil
		}

		temp[tableName] = true
		for _, dep := range g.deps[tableName] {
			if dep == tableName {
				continue
			}
			if _, ok := g.deps[dep]; !ok {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		temp[tableName] = false
		visited[tableName] = true
		order = append(order, tableName)
		return nil
	}

	for _, tableName := range g.declared {
		if !visited[tableName] {
			if err := visit(tableName); err != nil {
				return nil, err
			}
		}
	}

	return order, nil
}
