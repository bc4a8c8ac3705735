package arc

// starter holds the built-in arcs in the order they are presented.
// It is never handed out directly; Bootstrap copies it.
var starter = []struct {
	key string
	def Definition
}{
	{"lantern_shrine", Definition{
		Required: []string{"map:lantern_shrine", "clue:burned_names"},
		Optional: []string{"journal:elira_regret"},
	}},
	{"whispering_well", Definition{
		Required: []string{"map:whispering_well", "clue:childs_voice"},
		Optional: []string{"npc:echo_watcher"},
	}},
	{"clocktower", Definition{
		Required: []string{"map:clocktower", "journal:elira_last_entry"},
		Optional: []string{"clue:stopped_at_midnight"},
	}},
	{"elira_thread", Definition{
		Required: []string{"npc:elira_fragment", "journal:coat_markings"},
		Optional: []string{"clue:memory_token"},
	}},
}

// Bootstrap returns a fresh catalog holding the built-in arcs.
// Every call returns an independent instance.
func Bootstrap() *Catalog {
	c := NewCatalog()
	for _, s := range starter {
		// Keys in starter are unique.
		_ = c.Add(s.key, s.def)
	}
	return c
}

// IsBuiltin reports whether key names one of the starter arcs.
func IsBuiltin(key string) bool {
	for _, s := range starter {
		if s.key == key {
			return true
		}
	}
	return false
}
