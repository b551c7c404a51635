package store

import (
	"database/sql"
	"time"
)

// Data sources a meet row can originate from. The structured source wins
// on conflict.
const (
	SourceLenex   = "lenex"
	SourceScraped = "scraped"
)

// Meet is a swim competition. The id is source-provided and stable
// across both ingestion paths.
type Meet struct {
	ID         int64        `json:"id" db:"id"`
	Name       string       `json:"name" db:"name"`
	StartDate  sql.NullTime `json:"startdate,omitempty" db:"startdate"`
	EndDate    sql.NullTime `json:"enddate,omitempty" db:"enddate"`
	Course     string       `json:"course" db:"course"`
	DataSource string       `json:"datasource" db:"datasource"`
}

// Session is one scheduled block of events within a meet. Scraped
// sessions may have no known date.
type Session struct {
	ID            int64         `json:"id" db:"id"`
	MeetID        int64         `json:"meetid" db:"meetid"`
	SessionNumber sql.NullInt32 `json:"sessionnumber,omitempty" db:"sessionnumber"`
	SessionDate   sql.NullTime  `json:"sessiondate,omitempty" db:"sessiondate"`
}

// Event is a single race definition within a meet. Rows are append-only;
// the two adapters keep independent event identity spaces.
type Event struct {
	ID       int64          `json:"id" db:"id"`
	MeetID   int64          `json:"meetid" db:"meetid"`
	Stroke   string         `json:"stroke" db:"stroke"`
	Distance int            `json:"distance" db:"distance"`
	Round    sql.NullString `json:"round,omitempty" db:"round"`
	Gender   string         `json:"gender" db:"gender"`
}

// Heat is one timed race within an event.
type Heat struct {
	ID         int64         `json:"id" db:"id"`
	EventID    int64         `json:"eventid" db:"eventid"`
	SessionID  int64         `json:"sessionid" db:"sessionid"`
	HeatNumber sql.NullInt32 `json:"heatnumber,omitempty" db:"heatnumber"`
}

// Club is identified by its source code; a truncated name stands in when
// the source has no code. First writer wins for the code binding.
type Club struct {
	ID       int64          `json:"id" db:"id"`
	ClubCode string         `json:"clubcode" db:"clubcode"`
	Name     string         `json:"name" db:"name"`
	Nation   sql.NullString `json:"nation,omitempty" db:"nation"`
}

// Athlete carries a source-provided numeric id that is globally stable
// across both adapters. Existing non-null fields are never overwritten.
type Athlete struct {
	ID        int64          `json:"id" db:"id"`
	FirstName sql.NullString `json:"firstname,omitempty" db:"firstname"`
	LastName  sql.NullString `json:"lastname,omitempty" db:"lastname"`
	BirthDate sql.NullTime   `json:"birthdate,omitempty" db:"birthdate"`
	Gender    sql.NullString `json:"gender,omitempty" db:"gender"`
}

// ClubAffiliation records club membership observed at one meet
// (structured path only). At most one row per (athlete, club, meet).
type ClubAffiliation struct {
	ID           int64        `json:"id" db:"id"`
	AthleteID    int64        `json:"athleteid" db:"athleteid"`
	ClubID       int64        `json:"clubid" db:"clubid"`
	SourceMeetID int64        `json:"sourcemeetid" db:"sourcemeetid"`
	ValidFrom    sql.NullTime `json:"validfrom,omitempty" db:"validfrom"`
	ValidTo      sql.NullTime `json:"validto,omitempty" db:"validto"`
}

// Result is one swim by one athlete. The structured path links it to a
// heat row; the scraped path records (event, heatnumber) instead.
type Result struct {
	ID             int64          `json:"id" db:"id"`
	AthleteID      int64          `json:"athleteid" db:"athleteid"`
	HeatID         sql.NullInt64  `json:"heatid,omitempty" db:"heatid"`
	EventID        sql.NullInt64  `json:"eventid,omitempty" db:"eventid"`
	HeatNumber     sql.NullInt32  `json:"heatnumber,omitempty" db:"heatnumber"`
	ClubID         sql.NullInt64  `json:"clubid,omitempty" db:"clubid"`
	Lane           sql.NullInt32  `json:"lane,omitempty" db:"lane"`
	TimeHundredths sql.NullInt32  `json:"timehundredths,omitempty" db:"timehundredths"`
	Status         sql.NullString `json:"status,omitempty" db:"status"`
	Rank           sql.NullInt32  `json:"rank,omitempty" db:"rank"`
	ReactionTime   sql.NullInt32  `json:"reactiontimehundredths,omitempty" db:"reactiontimehundredths"`
	FinaPoints     sql.NullInt32  `json:"finapoints,omitempty" db:"finapoints"`
}

// Split is an intermediate cumulative time within a result. Distance is
// the natural key inside one result.
type Split struct {
	ID             int64 `json:"id" db:"id"`
	ResultID       int64 `json:"resultid" db:"resultid"`
	Distance       int   `json:"distance" db:"distance"`
	TimeHundredths int   `json:"timehundredths" db:"timehundredths"`
}

// Source record statuses, the handoff contract with the discovery
// collaborator. The structured adapter consumes downloaded/backed_up,
// the scrape adapter consumes lenex_not_found.
const (
	StatusPending          = "pending"
	StatusDownloaded       = "downloaded"
	StatusBackedUp         = "backed_up"
	StatusProcessed        = "processed"
	StatusProcessingFailed = "processing_failed"
	StatusLenexNotFound    = "lenex_not_found"
	StatusScraped          = "scraped"
	StatusScrapeFailed     = "scrape_failed"
)

// SourceRecord is one competition discovered upstream, with its
// processing state.
type SourceRecord struct {
	OnlineEventID int64          `json:"onlineeventid" db:"onlineeventid"`
	EventName     sql.NullString `json:"eventname,omitempty" db:"eventname"`
	EventDateFrom sql.NullTime   `json:"eventdatefrom,omitempty" db:"eventdatefrom"`
	EventDateTo   sql.NullTime   `json:"eventdateto,omitempty" db:"eventdateto"`
	Filename      sql.NullString `json:"filename,omitempty" db:"filename"`
	Status        string         `json:"status" db:"status"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}
