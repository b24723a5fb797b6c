package db

const (
	// SchemaV1 defines the SQL statements for version 1 of the database schema.
	// This is the single canonical schema for the 'dreamsdb' component: one
	// relational database file per install, with child tag tables instead of
	// JSON-encoded list columns.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS dreamweave_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS core_settings (
    setting_key TEXT PRIMARY KEY,
    setting_value TEXT,
    setting_type TEXT DEFAULT 'string',
    created_at REAL DEFAULT (unixepoch()),
    updated_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS dream_entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL DEFAULT 'default_user',
    entry_date TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'draft',
    transcription TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    lucidity_level INTEGER NOT NULL DEFAULT 0 CHECK (lucidity_level BETWEEN 0 AND 5),
    vividness_level INTEGER NOT NULL DEFAULT 0 CHECK (vividness_level BETWEEN 0 AND 5),
    emotional_intensity INTEGER NOT NULL DEFAULT 0 CHECK (emotional_intensity BETWEEN 0 AND 5),
    art_style TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    retention_days INTEGER NOT NULL DEFAULT 365,
    created_at REAL NOT NULL DEFAULT (unixepoch()),
    updated_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS audio_files (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dream_entry_id INTEGER NOT NULL REFERENCES dream_entries(id) ON DELETE CASCADE,
    file_path TEXT NOT NULL,
    file_name TEXT NOT NULL DEFAULT '',
    file_size INTEGER NOT NULL DEFAULT 0,
    duration_seconds REAL NOT NULL DEFAULT 0,
    audio_format TEXT NOT NULL DEFAULT 'm4a',
    audio_type TEXT NOT NULL,
    transcription_confidence REAL NOT NULL DEFAULT 0,
    auto_delete_at REAL,
    created_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS dream_analysis (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dream_entry_id INTEGER NOT NULL REFERENCES dream_entries(id) ON DELETE CASCADE,
    analysis_version TEXT NOT NULL DEFAULT 'v1.0',
    analysis_method TEXT NOT NULL DEFAULT 'keyword_matching',
    confidence_score REAL NOT NULL DEFAULT 0,
    dominant_emotion TEXT,
    dominant_theme TEXT,
    emotional_complexity INTEGER NOT NULL DEFAULT 0,
    symbolic_density REAL NOT NULL DEFAULT 0,
    analysis_duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS analysis_tags (
    analysis_id INTEGER NOT NULL REFERENCES dream_analysis(id) ON DELETE CASCADE,
    category TEXT NOT NULL CHECK (category IN ('emotion', 'theme', 'symbol')),
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (analysis_id, category, position)
);

CREATE TABLE IF NOT EXISTS prompt_enhancements (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dream_entry_id INTEGER NOT NULL REFERENCES dream_entries(id) ON DELETE CASCADE,
    original_prompt TEXT NOT NULL,
    enhanced_prompt TEXT NOT NULL,
    final_approved_prompt TEXT,
    enhancement_method TEXT NOT NULL DEFAULT 'psychological_analysis',
    art_style TEXT NOT NULL DEFAULT 'ethereal',
    style_intensity REAL NOT NULL DEFAULT 1.0,
    prompt_length INTEGER NOT NULL DEFAULT 0,
    complexity_score REAL NOT NULL DEFAULT 0,
    readability_score REAL NOT NULL DEFAULT 0,
    enhancement_duration_ms INTEGER NOT NULL DEFAULT 0,
    tokens_estimated INTEGER NOT NULL DEFAULT 0,
    created_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS enhancement_tags (
    enhancement_id INTEGER NOT NULL REFERENCES prompt_enhancements(id) ON DELETE CASCADE,
    category TEXT NOT NULL CHECK (category IN ('emotion', 'theme', 'symbol')),
    position INTEGER NOT NULL,
    tag TEXT NOT NULL,
    PRIMARY KEY (enhancement_id, category, position)
);

CREATE TABLE IF NOT EXISTS prompt_approvals (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    enhancement_id INTEGER NOT NULL REFERENCES prompt_enhancements(id) ON DELETE CASCADE,
    approval_status TEXT NOT NULL DEFAULT 'pending',
    user_modifications TEXT,
    approval_reason TEXT NOT NULL DEFAULT '',
    data_sharing_consent INTEGER NOT NULL DEFAULT 0,
    analytics_consent INTEGER NOT NULL DEFAULT 0,
    improvement_consent INTEGER NOT NULL DEFAULT 0,
    time_to_approve_seconds INTEGER NOT NULL DEFAULT 0,
    approval_method TEXT NOT NULL DEFAULT 'manual',
    satisfaction_rating INTEGER CHECK (satisfaction_rating BETWEEN 1 AND 5),
    user_feedback TEXT NOT NULL DEFAULT '',
    approved_at REAL,
    created_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS journal_prompts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dream_entry_id INTEGER NOT NULL REFERENCES dream_entries(id) ON DELETE CASCADE,
    prompt_text TEXT NOT NULL,
    prompt_category TEXT NOT NULL DEFAULT '',
    prompt_order INTEGER NOT NULL DEFAULT 0,
    response_audio_path TEXT,
    response_transcription TEXT,
    created_at REAL NOT NULL DEFAULT (unixepoch()),
    completed_at REAL
);

CREATE TABLE IF NOT EXISTS user_characters (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL DEFAULT 'default_user',
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    character_type TEXT NOT NULL DEFAULT 'dream_figure',
    image_url TEXT NOT NULL DEFAULT '',
    relationship TEXT NOT NULL DEFAULT '',
    usage_count INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    created_at REAL NOT NULL DEFAULT (unixepoch()),
    updated_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS art_style_preferences (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT NOT NULL DEFAULT 'default_user',
    style_name TEXT NOT NULL,
    usage_count INTEGER NOT NULL DEFAULT 0,
    average_rating REAL NOT NULL DEFAULT 0,
    is_favorite INTEGER NOT NULL DEFAULT 0,
    last_used_at REAL,
    created_at REAL NOT NULL DEFAULT (unixepoch()),
    updated_at REAL NOT NULL DEFAULT (unixepoch()),
    UNIQUE (user_id, style_name)
);

CREATE TABLE IF NOT EXISTS image_generations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    dream_entry_id INTEGER NOT NULL REFERENCES dream_entries(id) ON DELETE CASCADE,
    enhancement_id INTEGER REFERENCES prompt_enhancements(id) ON DELETE SET NULL,
    provider TEXT NOT NULL DEFAULT 'openai',
    model TEXT NOT NULL DEFAULT 'dall-e-3',
    quality TEXT NOT NULL DEFAULT 'standard',
    size TEXT NOT NULL DEFAULT '1024x1024',
    submitted_prompt TEXT NOT NULL,
    revised_prompt TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL DEFAULT '',
    local_image_path TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    generation_time_seconds REAL NOT NULL DEFAULT 0,
    cost_estimate REAL NOT NULL DEFAULT 0,
    error_message TEXT NOT NULL DEFAULT '',
    created_at REAL NOT NULL DEFAULT (unixepoch()),
    completed_at REAL
);

CREATE TABLE IF NOT EXISTS cost_tracking (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    operation_type TEXT NOT NULL,
    operation_id INTEGER,
    provider TEXT NOT NULL DEFAULT '',
    cost_amount REAL NOT NULL,
    cost_currency TEXT NOT NULL DEFAULT 'USD',
    units_used INTEGER NOT NULL DEFAULT 0,
    user_id TEXT NOT NULL DEFAULT 'default_user',
    dream_entry_id INTEGER,
    billing_date TEXT NOT NULL,
    created_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS analytics_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_type TEXT NOT NULL,
    event_name TEXT NOT NULL,
    event_category TEXT NOT NULL DEFAULT '',
    user_id TEXT NOT NULL DEFAULT 'default_user',
    dream_entry_id INTEGER,
    session_id TEXT NOT NULL DEFAULT '',
    properties TEXT NOT NULL DEFAULT '{}',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    is_anonymous INTEGER NOT NULL DEFAULT 1,
    created_at REAL NOT NULL DEFAULT (unixepoch())
);

CREATE INDEX IF NOT EXISTS idx_dream_entries_user_date ON dream_entries(user_id, entry_date DESC);
CREATE INDEX IF NOT EXISTS idx_dream_entries_status ON dream_entries(status);
CREATE INDEX IF NOT EXISTS idx_audio_files_entry ON audio_files(dream_entry_id);
CREATE INDEX IF NOT EXISTS idx_dream_analysis_entry ON dream_analysis(dream_entry_id);
CREATE INDEX IF NOT EXISTS idx_prompt_enhancements_entry ON prompt_enhancements(dream_entry_id);
CREATE INDEX IF NOT EXISTS idx_prompt_approvals_status ON prompt_approvals(approval_status);
CREATE INDEX IF NOT EXISTS idx_image_generations_entry ON image_generations(dream_entry_id);
CREATE INDEX IF NOT EXISTS idx_image_generations_status ON image_generations(status);
CREATE INDEX IF NOT EXISTS idx_cost_tracking_user_date ON cost_tracking(user_id, billing_date);
CREATE INDEX IF NOT EXISTS idx_analytics_events_user ON analytics_events(user_id, created_at);
`
)
