package entities

// LibraryUpdate lists the untested upstream versions of one library
type LibraryUpdate struct {
	Name     string   `json:"name" yaml:"name"`
	Versions []string `json:"versions" yaml:"versions"`
}

// GroupUpdates groups 'group:artifact:version' strings by library, keeping first-seen order
func GroupUpdates(coordinates []string) []LibraryUpdate {
	updates := make([]LibraryUpdate, 0)
	positions := make(map[string]int)
	for _, coord := range coordinates {
		c, err := ParseCoordinates(coord)
		if err != nil {
			continue
		}
		key := c.Module()
		i, ok := positions[key]
		if !ok {
			i = len(updates)
			positions[key] = i
			updates = append(updates, LibraryUpdate{Name: key})
		}
		updates[i].Versions = append(updates[i].Versions, c.Version)
	}
	return updates
}
