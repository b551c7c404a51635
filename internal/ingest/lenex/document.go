// Package lenex imports structured LENEX competition documents into the
// canonical schema in a single depth-first pass.
package lenex

import "encoding/xml"

// Document is the decoded LENEX tree. Only the attributes the importer
// consumes are modeled.
type Document struct {
	XMLName xml.Name  `xml:"LENEX"`
	Meets   []MeetXML `xml:"MEETS>MEET"`
}

// MeetXML is one MEET element.
type MeetXML struct {
	Name     string       `xml:"name,attr"`
	Course   string       `xml:"course,attr"`
	Sessions []SessionXML `xml:"SESSIONS>SESSION"`
	Clubs    []ClubXML    `xml:"CLUBS>CLUB"`
}

// SessionXML is one SESSION element.
type SessionXML struct {
	Number string     `xml:"number,attr"`
	Date   string     `xml:"date,attr"`
	Events []EventXML `xml:"EVENTS>EVENT"`
}

// EventXML is one EVENT element. Either eventid or number identifies it
// within the document.
type EventXML struct {
	EventID   string        `xml:"eventid,attr"`
	Number    string        `xml:"number,attr"`
	Gender    string        `xml:"gender,attr"`
	Round     string        `xml:"round,attr"`
	SwimStyle *SwimStyleXML `xml:"SWIMSTYLE"`
	Heats     []HeatXML     `xml:"HEATS>HEAT"`
}

// SwimStyleXML carries stroke and distance.
type SwimStyleXML struct {
	Stroke   string `xml:"stroke,attr"`
	Distance string `xml:"distance,attr"`
}

// HeatXML is one HEAT element.
type HeatXML struct {
	HeatID string `xml:"heatid,attr"`
	Number string `xml:"number,attr"`
}

// ClubXML is one CLUB element.
type ClubXML struct {
	Code     string       `xml:"code,attr"`
	Name     string       `xml:"name,attr"`
	Nation   string       `xml:"nation,attr"`
	Athletes []AthleteXML `xml:"ATHLETES>ATHLETE"`
}

// AthleteXML is one ATHLETE element. The athleteid attribute is
// load-bearing for cross-meet identity and must be numeric.
type AthleteXML struct {
	AthleteID string      `xml:"athleteid,attr"`
	FirstName string      `xml:"firstname,attr"`
	LastName  string      `xml:"lastname,attr"`
	BirthDate string      `xml:"birthdate,attr"`
	Gender    string      `xml:"gender,attr"`
	Results   []ResultXML `xml:"RESULTS>RESULT"`
}

// ResultXML is one RESULT element.
type ResultXML struct {
	EventID      string     `xml:"eventid,attr"`
	HeatID       string     `xml:"heatid,attr"`
	Lane         string     `xml:"lane,attr"`
	SwimTime     string     `xml:"swimtime,attr"`
	Status       string     `xml:"status,attr"`
	Disqualified string     `xml:"disqualified,attr"`
	Place        string     `xml:"place,attr"`
	Rank         string     `xml:"rank,attr"`
	ReactionTime string     `xml:"reactiontime,attr"`
	Splits       []SplitXML `xml:"SPLITS>SPLIT"`
}

// SplitXML is one SPLIT element.
type SplitXML struct {
	Distance string `xml:"distance,attr"`
	SwimTime string `xml:"swimtime,attr"`
}
