package allocator

// Sentinel keys so athletes without a team or division still group together
const (
	NoTeamKey     = "noteam"
	NoDivisionKey = "nodiv"
)

// GroupingConfig selects which attributes athletes must share to be seated together
type GroupingConfig struct {
	KeepTeamsTogether     bool
	KeepDivisionsTogether bool
}

// Group is a set of athletes the allocator tries to seat in a single squad
type Group struct {
	// Key identifies the group within its discipline
	Key string

	DisciplineID string

	// Members in first-seen order
	Members []*Athlete

	// TeamID and Division of the first member (empty if absent)
	TeamID   string
	Division string
}

// Size returns the number of athletes in the group
func (g *Group) Size() int {
	return len(g.Members)
}

// BuildGroups partitions a discipline's unassigned athletes into cohesion groups.
//
// Keys:
//   - both flags: team and division must match
//   - team only: team must match
//   - division only: division must match
//   - neither: every athlete forms its own group
//
// Groups are returned in the order their first member was seen.
func BuildGroups(disciplineID string, athletes []*Athlete, config GroupingConfig) []*Group {
	groups := make([]*Group, 0)
	byKey := make(map[string]*Group)

	for _, athlete := range athletes {
		key := groupKey(athlete, config)

		group, exists := byKey[key]
		if !exists {
			group = &Group{
				Key:          key,
				DisciplineID: disciplineID,
				TeamID:       athlete.TeamID,
				Division:     athlete.Division,
			}
			byKey[key] = group
			groups = append(groups, group)
		}
		group.Members = append(group.Members, athlete)
	}

	return groups
}

func groupKey(athlete *Athlete, config GroupingConfig) string {
	team := athlete.TeamID
	if team == "" {
		team = NoTeamKey
	}
	division := athlete.Division
	if division == "" {
		division = NoDivisionKey
	}

	switch {
	case config.KeepTeamsTogether && config.KeepDivisionsTogether:
		return "team:" + team + "|div:" + division
	case config.KeepTeamsTogether:
		return "team:" + team
	case config.KeepDivisionsTogether:
		return "div:" + division
	default:
		return "athlete:" + athlete.ID
	}
}
