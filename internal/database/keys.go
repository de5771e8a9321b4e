package database

// Storage keys. They match the names used by earlier exports so backups stay
// portable.
const (
	KeyGoals          = "ls_goals"
	KeyJournal        = "ls_journal"
	KeyChatSessions   = "ls_chat_sessions"
	KeyActiveChatID   = "ls_active_chat_id"
	KeyLastResetDate  = "ls_last_reset_date"
	KeyVirtualDate    = "ls_virtual_date"
	KeyTheme          = "ls_theme"
	KeyPreferredModel = "ls_preferred_model"
	KeyAPIKey         = "ls_api_key"
	KeyLanguage       = "ls_language"
	KeyDataVersion    = "ls_data_version"
	KeyDeviceToken    = "ls_device_token"
)
