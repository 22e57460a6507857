package constants

const (
	MAX_ARTISTS_PER_REORDER = 1000
	MAX_ARTIST_ID_LENGTH    = 128
)
