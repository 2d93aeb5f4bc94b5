// Copyright 2026 The Ladok-Go Authors
// SPDX-License-Identifier: Apache-2.0

package ladok

import "encoding/json"

// Wire shapes of the GUI-proxy JSON payloads. Field names are the
// server's Swedish ones; the domain types translate them. Numeric ids
// arrive as strings in some payloads and numbers in others, hence
// json.Number.

type errorResponse struct {
	Meddelande string `json:"Meddelande"`
}

type translationRecord struct {
	Sprakkod string `json:"Sprakkod"`
	Text     string `json:"Text"`
}

// translations is the server's multi-language name list.
type translations []translationRecord

// text returns the translation for the language code, falling back to
// the first entry.
func (t translations) text(lang string) string {
	for _, entry := range t {
		if entry.Sprakkod == lang {
			return entry.Text
		}
	}
	if len(t) > 0 {
		return t[0].Text
	}
	return ""
}

func (t translations) toMap() map[string]string {
	names := make(map[string]string, len(t))
	for _, entry := range t {
		names[entry.Sprakkod] = entry.Text
	}
	return names
}

type gradeScaleListResponse struct {
	Betygsskala []gradeScaleRecord `json:"Betygsskala"`
}

type gradeScaleRecord struct {
	ID        json.Number       `json:"ID"`
	Kod       string            `json:"Kod"`
	Benamning map[string]string `json:"Benamning"`
	Betygsgrad []gradeRecord    `json:"Betygsgrad"`
}

type gradeRecord struct {
	ID                 json.Number `json:"ID"`
	Kod                string      `json:"Kod"`
	GiltigSomSlutbetyg bool        `json:"GiltigSomSlutbetyg"`
}

type studentRecord struct {
	Uid          string `json:"Uid"`
	Personnummer string `json:"Personnummer"`
	Fornamn      string `json:"Fornamn"`
	Efternamn    string `json:"Efternamn"`
	Avliden      bool   `json:"Avliden"`
}

type studentFilterResponse struct {
	Resultat []studentRecord `json:"Resultat"`
}

type participationResponse struct {
	Tillfallesdeltaganden []participationRecord `json:"Tillfallesdeltaganden"`
}

type participationRecord struct {
	Nuvarande             bool           `json:"Nuvarande"`
	Utbildningsinformation instanceRecord `json:"Utbildningsinformation"`
}

// instanceRecord is the course-instance shape shared by the
// registration payload (where it carries the round fields) and the
// module-batch payload (where it carries only the instance fields).
type instanceRecord struct {
	Uid                     string          `json:"Uid"`
	UtbildningsinstansUID   string          `json:"UtbildningsinstansUID"`
	UtbildningUID           string          `json:"UtbildningUID"`
	Utbildningskod          string          `json:"Utbildningskod"`
	Benamning               translations    `json:"Benamning"`
	Versionsnummer          int             `json:"Versionsnummer"`
	Omfattning              float64         `json:"Omfattning"`
	Enhet                   string          `json:"Enhet"`
	BetygsskalaID           json.Number     `json:"BetygsskalaID"`
	Moduler                 []moduleRecord  `json:"Moduler"`
	UtbildningstillfalleUID string          `json:"UtbildningstillfalleUID"`
	Studieperiod            *periodRecord   `json:"Studieperiod"`
}

// instanceID returns the instance id however the payload names it.
func (r *instanceRecord) instanceID() string {
	if r.UtbildningsinstansUID != "" {
		return r.UtbildningsinstansUID
	}
	return r.Uid
}

type moduleRecord struct {
	Uid                   string       `json:"Uid"`
	UtbildningsinstansUID string       `json:"UtbildningsinstansUID"`
	UtbildningUID         string       `json:"UtbildningUID"`
	Utbildningskod        string       `json:"Utbildningskod"`
	Benamning             translations `json:"Benamning"`
	Omfattning            float64      `json:"Omfattning"`
	Enhet                 string       `json:"Enhet"`
	BetygsskalaID         json.Number  `json:"BetygsskalaID"`
}

func (r *moduleRecord) instanceID() string {
	if r.UtbildningsinstansUID != "" {
		return r.UtbildningsinstansUID
	}
	return r.Uid
}

type periodRecord struct {
	Startdatum string `json:"Startdatum"`
	Slutdatum  string `json:"Slutdatum"`
}

type moduleBatchRequest struct {
	Identitet []string `json:"Identitet"`
}

type moduleBatchResponse struct {
	Utbildningsinstans []instanceRecord `json:"Utbildningsinstans"`
}

type roundSearchResponse struct {
	Resultat []roundRecord `json:"Resultat"`
}

type roundRecord struct {
	Uid                string         `json:"Uid"`
	TillfallesKod      string         `json:"TillfallesKod"`
	Startdatum         string         `json:"Startdatum"`
	Slutdatum          string         `json:"Slutdatum"`
	Utbildningsinstans instanceRecord `json:"Utbildningsinstans"`
}

type studyResultsResponse struct {
	Uid                    string        `json:"Uid"`
	ResultatPaUtbildningar []resultEntry `json:"ResultatPaUtbildningar"`
}

// resultEntry is one per-component row of the study-results payload.
// Arbetsunderlag is the editable draft, SenastAttesteradeResultat the
// sealed attested record; either or both may be present.
type resultEntry struct {
	Arbetsunderlag            *resultRecord `json:"Arbetsunderlag"`
	SenastAttesteradeResultat *resultRecord `json:"SenastAttesteradeResultat"`
}

// resultRecord is a single server result row. SenasteResultatandring
// is the optimistic-concurrency token; it is opaque and round-tripped
// verbatim, never parsed.
type resultRecord struct {
	Uid                    string          `json:"Uid"`
	UtbildningsinstansUID  string          `json:"UtbildningsinstansUID"`
	ResultatUID            string          `json:"ResultatUID"`
	StudieresultatUID      string          `json:"StudieresultatUID"`
	BetygsskalaID          json.Number     `json:"BetygsskalaID"`
	Betygsgrad             int             `json:"Betygsgrad"`
	Examinationsdatum      string          `json:"Examinationsdatum"`
	ProcessStatus          int             `json:"ProcessStatus,omitempty"`
	SenasteResultatandring json.RawMessage `json:"SenasteResultatandring,omitempty"`
}

type resultListResponse struct {
	Resultat []resultRecord `json:"Resultat"`
}

type createResultRequest struct {
	Resultat []createResultEntry `json:"Resultat"`
}

type createResultEntry struct {
	Betygsgrad            int      `json:"Betygsgrad"`
	BetygsskalaID         int      `json:"BetygsskalaID"`
	Examinationsdatum     string   `json:"Examinationsdatum"`
	Noteringar            []string `json:"Noteringar"`
	StudieresultatUID     string   `json:"StudieresultatUID"`
	UtbildningsinstansUID string   `json:"UtbildningsinstansUID"`
}

type updateResultRequest struct {
	Resultat []updateResultEntry `json:"Resultat"`
}

type updateResultEntry struct {
	ResultatUID            string          `json:"ResultatUID"`
	Betygsgrad             int             `json:"Betygsgrad"`
	BetygsskalaID          int             `json:"BetygsskalaID"`
	Noteringar             []string        `json:"Noteringar"`
	Examinationsdatum      string          `json:"Examinationsdatum"`
	SenasteResultatandring json.RawMessage `json:"SenasteResultatandring"`
}

type finalizeResultRequest struct {
	Beslutsfattare          []string        `json:"Beslutsfattare"`
	RattadAv                []string        `json:"RattadAv"`
	ResultatetsSenastSparad json.RawMessage `json:"ResultatetsSenastSparad"`
}

type userInfoRecord struct {
	AnvandareUID string `json:"AnvandareUID"`
	Anvandarnamn string `json:"Anvandarnamn"`
	Fornamn      string `json:"Fornamn"`
	Efternamn    string `json:"Efternamn"`
	Email        string `json:"Email"`
}

type participantSearchRequest struct {
	Page                    int      `json:"page"`
	Limit                   int      `json:"limit"`
	OrderBy                 []string `json:"orderby"`
	Deltagaretillstand      []string `json:"deltagaretillstand"`
	UtbildningstillfalleUID []string `json:"utbildningstillfalleUID"`
}

type participantSearchResponse struct {
	Resultat []json.RawMessage `json:"Resultat"`
}
