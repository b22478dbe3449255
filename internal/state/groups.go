package state

import (
	"github.com/mav/genflow/internal/workflow"
)

// AddGroup creates a group over the given member nodes. Ids that do not
// reference existing nodes are dropped.
func (s *Store) AddGroup(name, color string, nodeIDs []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	members := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		if workflow.FindNode(s.nodes, id) >= 0 {
			members = append(members, id)
		}
	}
	g := workflow.Group{
		ID:      workflow.NewID(),
		Name:    name,
		Color:   color,
		NodeIDs: members,
	}
	s.groups = append(workflow.CloneGroups(s.groups), g)
	s.commit()
	return g.ID
}

// RemoveGroup deletes a group. Member nodes are untouched.
func (s *Store) RemoveGroup(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := make([]workflow.Group, 0, len(s.groups))
	for _, g := range s.groups {
		if g.ID != id {
			groups = append(groups, g.Clone())
		}
	}
	if len(groups) == len(s.groups) {
		return
	}
	s.groups = groups
	s.commit()
}

// RenameGroup updates a group's name and color.
func (s *Store) RenameGroup(id, name, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := workflow.CloneGroups(s.groups)
	for i := range groups {
		if groups[i].ID == id {
			groups[i].Name = name
			groups[i].Color = color
			s.groups = groups
			s.commit()
			return
		}
	}
}

// SetGroupLocked locks or unlocks a group. Locking a group locks all its
// member nodes.
func (s *Store) SetGroupLocked(id string, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups := workflow.CloneGroups(s.groups)
	var members []string
	found := false
	for i := range groups {
		if groups[i].ID == id {
			groups[i].IsLocked = locked
			members = groups[i].NodeIDs
			found = true
			break
		}
	}
	if !found {
		return
	}

	nodes := workflow.CloneNodes(s.nodes)
	for _, m := range members {
		i := workflow.FindNode(nodes, m)
		if i < 0 {
			continue
		}
		nodes[i] = workflow.MergeData(nodes[i], workflow.Data{workflow.FieldIsLocked: locked})
	}

	s.groups = groups
	s.nodes = nodes
	s.commit()
}

// LockedNodes returns the set of node ids locked directly or via groups.
func (s *Store) LockedNodes() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return workflow.LockedNodeIDs(s.nodes, s.groups)
}
