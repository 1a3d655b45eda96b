package domain

// DocumentKind is the closed set of document types the intake pipeline knows.
type DocumentKind string

const (
	KindBirthCertificate    DocumentKind = "birth_certificate"
	KindMarriageCertificate DocumentKind = "marriage_certificate"
	KindPassport            DocumentKind = "passport"
	KindDeathCertificate    DocumentKind = "death_certificate"
	KindNaturalization      DocumentKind = "naturalization_record"
	KindMilitaryRecord      DocumentKind = "military_record"
	KindOther               DocumentKind = "other"
	KindUnknown             DocumentKind = "unknown"
)

// ValidDocumentKinds is the set accepted from API input.
var ValidDocumentKinds = map[DocumentKind]bool{
	KindBirthCertificate:    true,
	KindMarriageCertificate: true,
	KindPassport:            true,
	KindDeathCertificate:    true,
	KindNaturalization:      true,
	KindMilitaryRecord:      true,
	KindOther:               true,
	KindUnknown:             true,
}

// PersonRole tags a document with the family member it belongs to. The role
// determines which case-record field prefix extracted values map to.
type PersonRole string

const (
	RoleApplicant PersonRole = "applicant"
	RoleSpouse    PersonRole = "spouse"
	RoleFather    PersonRole = "father"
	RoleMother    PersonRole = "mother"
	RolePGF       PersonRole = "pgf" // paternal grandfather
	RolePGM       PersonRole = "pgm" // paternal grandmother
	RoleMGF       PersonRole = "mgf" // maternal grandfather
	RoleMGM       PersonRole = "mgm" // maternal grandmother
	RoleChild1    PersonRole = "child_1"
	RoleChild2    PersonRole = "child_2"
	RoleChild3    PersonRole = "child_3"
	RoleChild4    PersonRole = "child_4"
	RoleChild5    PersonRole = "child_5"
)

// ValidPersonRoles is the set accepted from API input.
var ValidPersonRoles = map[PersonRole]bool{
	RoleApplicant: true,
	RoleSpouse:    true,
	RoleFather:    true,
	RoleMother:    true,
	RolePGF:       true,
	RolePGM:       true,
	RoleMGF:       true,
	RoleMGM:       true,
	RoleChild1:    true,
	RoleChild2:    true,
	RoleChild3:    true,
	RoleChild4:    true,
	RoleChild5:    true,
}

// OCRStatus is the document's position in the extraction pipeline.
type OCRStatus string

const (
	OCRStatusNone       OCRStatus = ""
	OCRStatusQueued     OCRStatus = "queued"
	OCRStatusProcessing OCRStatus = "processing"
	OCRStatusCompleted  OCRStatus = "completed"
	OCRStatusFailed     OCRStatus = "failed"
)

// ConflictStatus is the lifecycle of a recorded field disagreement. Only a
// human (or bulk) resolution action moves a conflict out of pending.
type ConflictStatus string

const (
	ConflictStatusPending    ConflictStatus = "pending"
	ConflictStatusUseOCR     ConflictStatus = "resolved_use_ocr"
	ConflictStatusKeepManual ConflictStatus = "resolved_keep_manual"
	ConflictStatusIgnored    ConflictStatus = "ignored"
)

// ValidResolutions is the set of terminal statuses a resolution action may apply.
var ValidResolutions = map[ConflictStatus]bool{
	ConflictStatusUseOCR:     true,
	ConflictStatusKeepManual: true,
	ConflictStatusIgnored:    true,
}

// FieldSource records how a case-record value was produced.
type FieldSource string

const (
	FieldSourceManual FieldSource = "manual"
	FieldSourceOCR    FieldSource = "ocr"
)

// ExtractableContentTypes maps MIME types the OCR capability accepts.
var ExtractableContentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// AllowedExtensions maps upload file extensions (without dot) to MIME types.
var AllowedExtensions = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
}
