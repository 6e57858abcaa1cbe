/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package announce

// VenuePlaceholder is substituted with the configured venue name in welcome
// scripts.
const VenuePlaceholder = "[VENUE_NAME]"

// Scripts bundles every spoken-copy template the selector draws from.
// Fields left empty fall back to the built-in defaults.
type Scripts struct {
	Welcome  []string `yaml:"welcome"`
	Halfway  []string `yaml:"halfway"`
	Trivia   []string `yaml:"trivia"`
	Simple   []string `yaml:"simple"`
	Eighties []string `yaml:"eighties"`
}

// DefaultScripts returns the built-in template pack.
func DefaultScripts() Scripts {
	return Scripts{
		Welcome: []string{
			"Welcome to music bingo night at [VENUE_NAME]! Grab your cards, listen closely, and mark every song you recognize. Good luck everybody!",
			"Hello hello and welcome to [VENUE_NAME]! Tonight we play music bingo. When you hear a song on your card, mark it off. First full line wins!",
			"It's bingo time at [VENUE_NAME]! Ears open, pens ready. Let's find out who really knows their music!",
		},
		Halfway: []string{
			"We are halfway through the pool, folks! If your card is still looking empty, it's time to start listening harder.",
			"Halftime! Half the songs are out. Somebody in this room is one lucky tune away from shouting bingo.",
			"That's the halfway mark! Check your neighbours' cards, keep them honest, and stay sharp.",
		},
		Trivia: []string{
			"This next one topped charts all over the world. You know it, you love it, now find it on your card!",
			"Here comes a certified floor-filler. If this one's on your card, you're in luck!",
			"The next song needs no introduction. Listen close!",
			"Oh, this is a good one. Everybody ready?",
		},
		Simple: []string{
			"Next song, coming up!",
			"Here we go with the next one.",
			"Alright, ears open. Next track!",
			"Moving right along. Listen up!",
		},
		Eighties: []string{
			"Big hair, bigger synths. This one comes straight from the nineteen eighties!",
			"Time to dust off the leg warmers, we're heading back to the eighties!",
		},
	}
}

// decadeLines maps a year floor to its fixed announcement sentence. The
// eighties bucket draws from Scripts.Eighties instead.
var decadeLines = []struct {
	minYear int
	line    string
}{
	{2020, "Fresh off the charts, here's one from this decade!"},
	{2010, "Let's go back to the twenty-tens with this next one!"},
	{2000, "Y2K survivors, this one's for you. Straight from the two-thousands!"},
	{1990, "Cast your mind back to the nineties for this next track!"},
	{1980, ""}, // handled by the eighties variants
	{1970, "Platform shoes on! We're spinning back to the seventies!"},
	{1960, "All the way back to the swinging sixties with this one!"},
}

const oldiesLine = "This next one is a true golden oldie. See if you can place it!"
