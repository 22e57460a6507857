package schema

// Models lists every table managed by the store, in migration order
func Models() []interface{} {
	return []interface{}{
		&Identity{},
		&Artist{},
		&Bookmark{},
		&UGCSubmission{},
		&SeenWatermark{},
		&IdentityMergeJournal{},
	}
}
