package dynamo

// Attribute names used in key, update and condition expressions.
const (
	fieldUserID     = "user_id"
	fieldFileID     = "file_id"
	fieldUploadedBy = "uploaded_by_user_id"
	fieldEnable     = "enable"
	fieldCode       = "code"
	fieldVerified   = "verified"
	fieldAttempts   = "attempts"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"
)
