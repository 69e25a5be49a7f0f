package seed

import "github.com/vytor/cosmosquiz/internal/models"

// sample is a built-in quiz before it gets ids and timestamps.
type sample struct {
	shareCode   string
	title       string
	description string
	cards       [][2]string
}

var samples = []sample{
	{
		shareCode:   "planets",
		title:       "Planets of the Solar System",
		description: "The eight planets, from the closest to the Sun outwards.",
		cards: [][2]string{
			{"Mercury", "Smallest planet and closest to the Sun"},
			{"Venus", "Hottest planet, wrapped in thick clouds of sulfuric acid"},
			{"Earth", "The only planet known to host life"},
			{"Mars", "The red planet, home of Olympus Mons"},
			{"Jupiter", "Largest planet, with the Great Red Spot"},
			{"Saturn", "Gas giant famous for its bright ring system"},
			{"Uranus", "Ice giant that rotates on its side"},
			{"Neptune", "Windiest planet, farthest from the Sun"},
		},
	},
	{
		shareCode:   "constellations",
		title:       "Famous Constellations",
		description: "Star patterns every stargazer should know.",
		cards: [][2]string{
			{"Orion", "The hunter, with Betelgeuse and Rigel"},
			{"Ursa Major", "The great bear, containing the Big Dipper"},
			{"Ursa Minor", "The little bear, ending in Polaris"},
			{"Cassiopeia", "W-shaped queen near the celestial north pole"},
			{"Crux", "Southern Cross, the smallest constellation"},
			{"Cygnus", "The swan flying along the Milky Way"},
			{"Lyra", "The lyre, home of the bright star Vega"},
			{"Scorpius", "The scorpion, with red Antares at its heart"},
		},
	},
	{
		shareCode:   "zodiac",
		title:       "Zodiac Signs",
		description: "The twelve constellations along the ecliptic.",
		cards: [][2]string{
			{"Aries", "The ram, March 21 to April 19"},
			{"Taurus", "The bull, April 20 to May 20"},
			{"Gemini", "The twins, May 21 to June 20"},
			{"Cancer", "The crab, June 21 to July 22"},
			{"Leo", "The lion, July 23 to August 22"},
			{"Virgo", "The maiden, August 23 to September 22"},
			{"Libra", "The scales, September 23 to October 22"},
			{"Scorpio", "The scorpion, October 23 to November 21"},
			{"Sagittarius", "The archer, November 22 to December 21"},
			{"Capricorn", "The sea goat, December 22 to January 19"},
			{"Aquarius", "The water bearer, January 20 to February 18"},
			{"Pisces", "The fish, February 19 to March 20"},
		},
	},
	{
		shareCode:   "deep-sky",
		title:       "Galaxies and Nebulae",
		description: "Deep sky objects beyond our Solar System.",
		cards: [][2]string{
			{"Milky Way", "Barred spiral galaxy that contains the Solar System"},
			{"Andromeda Galaxy", "Nearest large spiral galaxy, on course to merge with ours"},
			{"Orion Nebula", "Stellar nursery visible in Orion's sword"},
			{"Crab Nebula", "Remnant of a supernova observed in 1054"},
			{"Horsehead Nebula", "Dark nebula shaped like a horse's head"},
			{"Large Magellanic Cloud", "Satellite galaxy of the Milky Way seen from the south"},
			{"Pillars of Creation", "Columns of gas in the Eagle Nebula"},
			{"Whirlpool Galaxy", "Interacting spiral galaxy M51"},
		},
	},
}

func (s sample) quiz() models.Quiz {
	q := models.Quiz{
		ShareCode:   s.shareCode,
		Title:       s.title,
		Description: s.description,
		IsPublic:    true,
		Categories:  models.AllModes(),
	}
	for i, c := range s.cards {
		q.Cards = append(q.Cards, models.Card{Position: i, Term: c[0], Definition: c[1]})
	}
	return q
}
