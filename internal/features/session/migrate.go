package session

import "fmt"

// migration upgrades a decoded record by exactly one version
type migration func(doc map[string]any) error

// migrations is keyed by the version a step upgrades from
var migrations = map[int]migration{
	1: migrateV1,
}

// migrateV1 upgrades records written before layouts were persisted. Version
// one stored the channel selection as selectedChannels and had no layout
// list; its widgets become the current layout on restore.
func migrateV1(doc map[string]any) error {
	if fm, ok := doc["fileManager"].(map[string]any); ok {
		if old, ok := fm["selectedChannels"]; ok {
			if _, exists := fm["selectedChannelIds"]; !exists {
				fm["selectedChannelIds"] = old
			}
			delete(fm, "selectedChannels")
		}
	}
	// version one kept panel sizes as a name to percentage map
	if sizes, ok := doc["panelSizes"].(map[string]any); ok {
		ordered := make([]any, 0, 2)
		for _, k := range []string{"sidebar", "main"} {
			if v, ok := sizes[k]; ok {
				ordered = append(ordered, v)
			}
		}
		doc["panelSizes"] = ordered
	}
	delete(doc, "layouts")
	delete(doc, "currentLayoutId")
	doc["version"] = 2
	return nil
}

// versionOf reads the record's version. Records without one predate
// versioning and are treated as version one.
func versionOf(doc map[string]any) (int, error) {
	raw, ok := doc["version"]
	if !ok || raw == nil {
		return 1, nil
	}
	f, ok := raw.(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid version %v", raw)
	}
	return int(f), nil
}

// migrate walks doc up to CurrentVersion
func migrate(doc map[string]any) (from int, err error) {
	from, err = versionOf(doc)
	if err != nil {
		return 0, err
	}
	if from > CurrentVersion {
		return from, fmt.Errorf("record version %d is newer than %d", from, CurrentVersion)
	}
	for v := from; v < CurrentVersion; v++ {
		step, ok := migrations[v]
		if !ok {
			return from, fmt.Errorf("no migration from version %d", v)
		}
		if err := step(doc); err != nil {
			return from, fmt.Errorf("migrate from version %d: %w", v, err)
		}
	}
	doc["version"] = CurrentVersion
	return from, nil
}
