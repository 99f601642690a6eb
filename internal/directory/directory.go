// Package directory holds the static player directory used when the
// upstream identity lookup is unavailable, and the default seed list for
// batch runs. It is plain data passed into the orchestrator, not
// process-wide state.
package directory

import "strings"

// Entry is one known player identity: the upstream provider id plus a
// display name.
type Entry struct {
	NBAPlayerID int
	FullName    string
}

// Directory is a searchable set of player identities.
type Directory []Entry

// Search returns entries whose full name contains the query,
// case-insensitive. An empty query matches nothing.
func (d Directory) Search(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var matches []Entry
	for _, e := range d {
		if strings.Contains(strings.ToLower(e.FullName), q) {
			matches = append(matches, e)
		}
	}
	return matches
}

// ByID returns the entry for an upstream player id, if known.
func (d Directory) ByID(nbaPlayerID int) (Entry, bool) {
	for _, e := range d {
		if e.NBAPlayerID == nbaPlayerID {
			return e, true
		}
	}
	return Entry{}, false
}

// Default returns the built-in directory of players ingested when no
// player selection is given on the command line.
func Default() Directory {
	return Directory{
		{203999, "Nikola Jokic"},
		{1628983, "Shai Gilgeous-Alexander"},
		{1629029, "Luka Doncic"},
		{203507, "Giannis Antetokounmpo"},
		{1641705, "Victor Wembanyama"},
		{1630162, "Anthony Edwards"},
		{201939, "Stephen Curry"},
		{1628378, "Donovan Mitchell"},
		{1630595, "Cade Cunningham"},
		{1628973, "Jalen Brunson"},
		{1627759, "Jaylen Brown"},
		{201142, "Kevin Durant"},
		{1630178, "Tyrese Maxey"},
		{1626164, "Devin Booker"},
		{1627750, "Jamal Murray"},
		{2544, "LeBron James"},
		{1628369, "Jayson Tatum"},
		{203954, "Joel Embiid"},
		{201935, "James Harden"},
		{203076, "Anthony Davis"},
		{1629027, "Trae Young"},
		{1629630, "Ja Morant"},
		{1628963, "Domantas Sabonis"},
		{1626157, "Karl-Anthony Towns"},
		{1628368, "De'Aaron Fox"},
		{1631094, "Paolo Banchero"},
		{1630169, "Tyrese Haliburton"},
		{1628374, "Lauri Markkanen"},
		{1628389, "Bam Adebayo"},
		{1629627, "Zion Williamson"},
		{1630163, "LaMelo Ball"},
		{1629628, "RJ Barrett"},
		{1627783, "Pascal Siakam"},
		{1628381, "OG Anunoby"},
		{1629639, "Tyler Herro"},
		{201950, "Jrue Holiday"},
		{203497, "Rudy Gobert"},
		{203944, "Julius Randle"},
		{1627749, "Dejounte Murray"},
		{1630224, "Desmond Bane"},
	}
}
