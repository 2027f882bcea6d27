/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package normalize

// CanonicalVariousArtists replaces every spelling in variousArtistsVariants.
const CanonicalVariousArtists = "Various Artists"

var variousArtistsVariants = map[string]bool{
	"v/a":             true,
	"v.a.":            true,
	"va":              true,
	"various":         true,
	"various artist":  true,
	"various artists": true,
	"variousartists":  true,
	"v / a":           true,
	"v/ a":            true,
}

// genreMappings maps lowercase genre variants to their canonical spelling.
var genreMappings = map[string]string{
	"electronic": "Electronic",
	"electro":    "Electronic",

	"hip-hop": "Hip-Hop",
	"hip hop": "Hip-Hop",
	"hiphop":  "Hip-Hop",
	"rap":     "Hip-Hop",

	"rock":          "Rock",
	"rock & roll":   "Rock & Roll",
	"rock and roll": "Rock & Roll",
	"rock'n'roll":   "Rock & Roll",

	"pop":  "Pop",
	"jazz": "Jazz",

	"classical": "Classical",
	"classic":   "Classical",

	"metal":       "Metal",
	"heavy metal": "Heavy Metal",

	"alternative": "Alternative",
	"alt":         "Alternative",
	"indie":       "Indie",

	"r&b":              "R&B",
	"r & b":            "R&B",
	"rnb":              "R&B",
	"rhythm and blues": "R&B",

	"country":      "Country",
	"blues":        "Blues",
	"punk":         "Punk",
	"punk rock":    "Punk Rock",
	"reggae":       "Reggae",
	"soul":         "Soul",
	"folk":         "Folk",
	"experimental": "Experimental",
	"ambient":      "Ambient",
}

var artistKeys = map[string]bool{
	"artist":       true,
	"albumartist":  true,
	"album_artist": true,
	"album artist": true,
	"tpe1":         true,
	"tpe2":         true,
}

var genreKeys = map[string]bool{
	"genre": true,
	"tcon":  true,
}

var lyricsKeys = map[string]bool{
	"lyrics":         true,
	"unsyncedlyrics": true,
	"uslt":           true,
}
