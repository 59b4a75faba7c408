package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"routinestar/internal/database"
)

// BackupData is the full database export structure
type BackupData struct {
	Version      string              `json:"version"`
	ExportedAt   time.Time           `json:"exported_at"`
	Families     []FamilyBackup      `json:"families"`
	Children     []ChildBackup       `json:"children"`
	Routines     []RoutineBackup     `json:"routines"`
	Tasks        []TaskBackup        `json:"tasks"`
	Sessions     []SessionBackup     `json:"sessions"`
	Completions  []CompletionBackup  `json:"completions"`
	Transactions []TransactionBackup `json:"transactions"`
	Stats        []StatBackup        `json:"stats"`
	Achievements []AchievementBackup `json:"achievements"`
	Grants       []GrantBackup       `json:"grants"`
	Rewards      []RewardBackup      `json:"rewards"`
	Redemptions  []RedemptionBackup  `json:"redemptions"`
}

// FamilyBackup is a family record for backup
type FamilyBackup struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ParentEmail   string    `json:"parent_email"`
	ParentKeyHash string    `json:"parent_key_hash"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ChildBackup is a child profile record for backup
type ChildBackup struct {
	ID          int64     `json:"id"`
	FamilyID    int64     `json:"family_id"`
	Name        string    `json:"name"`
	AvatarColor string    `json:"avatar_color"`
	Username    string    `json:"username"`
	PINHash     string    `json:"pin_hash"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RoutineBackup is a routine record for backup
type RoutineBackup struct {
	ID                    int64     `json:"id"`
	FamilyID              int64     `json:"family_id"`
	Name                  string    `json:"name"`
	ScheduleDays          string    `json:"schedule_days"`
	AutoCloseAfterMinutes int       `json:"auto_close_after_minutes"`
	Active                bool      `json:"active"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TaskBackup is a routine task record for backup
type TaskBackup struct {
	ID             int64      `json:"id"`
	RoutineID      int64      `json:"routine_id"`
	ChildProfileID int64      `json:"child_profile_id"`
	Title          string     `json:"title"`
	Position       int        `json:"position"`
	PointValue     int        `json:"point_value"`
	IsOptional     bool       `json:"is_optional"`
	Active         bool       `json:"active"`
	DeletedAt      *time.Time `json:"deleted_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SessionBackup is a routine session record for backup
type SessionBackup struct {
	ID               int64      `json:"id"`
	RoutineID        int64      `json:"routine_id"`
	ChildProfileID   int64      `json:"child_profile_id"`
	SessionDate      string     `json:"session_date"`
	Status           string     `json:"status"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	PlannedEndAt     *time.Time `json:"planned_end_at"`
	AutoClosedAt     *time.Time `json:"auto_closed_at"`
	DurationSeconds  *int       `json:"duration_seconds"`
	PointsAwarded    int        `json:"points_awarded"`
	BonusMultiplier  int        `json:"bonus_multiplier"`
	BestTimeBeaten   bool       `json:"best_time_beaten"`
	CompletionReason *string    `json:"completion_reason"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CompletionBackup is a task completion record for backup
type CompletionBackup struct {
	ID            int64     `json:"id"`
	SessionID     int64     `json:"session_id"`
	TaskID        int64     `json:"task_id"`
	CompletedAt   time.Time `json:"completed_at"`
	Position      int       `json:"position"`
	PointsAwarded int       `json:"points_awarded"`
}

// TransactionBackup is a point transaction record for backup
type TransactionBackup struct {
	ID              int64     `json:"id"`
	FamilyID        int64     `json:"family_id"`
	ProfileID       int64     `json:"profile_id"`
	TransactionType string    `json:"transaction_type"`
	PointsDelta     int       `json:"points_delta"`
	BalanceAfter    int       `json:"balance_after"`
	Reason          string    `json:"reason"`
	ReferenceID     *int64    `json:"reference_id"`
	ReferenceTable  *string   `json:"reference_table"`
	CreatedAt       time.Time `json:"created_at"`
}

// StatBackup is a performance stat record for backup
type StatBackup struct {
	ID                     int64  `json:"id"`
	ChildProfileID         int64  `json:"child_profile_id"`
	RoutineID              int64  `json:"routine_id"`
	BestDurationSeconds    *int   `json:"best_duration_seconds"`
	BestSessionID          *int64 `json:"best_session_id"`
	LastCompletedSessionID *int64 `json:"last_completed_session_id"`
	StreakDays             int    `json:"streak_days"`
}

// AchievementBackup is an achievement rule record for backup
type AchievementBackup struct {
	ID          int64  `json:"id"`
	FamilyID    *int64 `json:"family_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GrantBackup is a user achievement record for backup
type GrantBackup struct {
	ID             int64     `json:"id"`
	ChildProfileID int64     `json:"child_profile_id"`
	AchievementID  int64     `json:"achievement_id"`
	AwardedAt      time.Time `json:"awarded_at"`
	Metadata       *string   `json:"metadata"`
}

// RewardBackup is a reward record for backup
type RewardBackup struct {
	ID         int64  `json:"id"`
	FamilyID   int64  `json:"family_id"`
	Name       string `json:"name"`
	PointsCost int    `json:"points_cost"`
	Active     bool   `json:"active"`
}

// RedemptionBackup is a reward redemption record for backup
type RedemptionBackup struct {
	ID             int64     `json:"id"`
	RewardID       int64     `json:"reward_id"`
	ChildProfileID int64     `json:"child_profile_id"`
	TransactionID  int64     `json:"transaction_id"`
	RedeemedAt     time.Time `json:"redeemed_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	steps := []struct {
		name string
		fn   func(*BackupData) error
	}{
		{"families", s.exportFamilies},
		{"children", s.exportChildren},
		{"routines", s.exportRoutines},
		{"tasks", s.exportTasks},
		{"sessions", s.exportSessions},
		{"completions", s.exportCompletions},
		{"transactions", s.exportTransactions},
		{"stats", s.exportStats},
		{"achievements", s.exportAchievements},
		{"grants", s.exportGrants},
		{"rewards", s.exportRewards},
		{"redemptions", s.exportRedemptions},
	}
	for _, step := range steps {
		if err := step.fn(backup); err != nil {
			return fmt.Errorf("failed to export %s: %w", step.name, err)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d families, %d children, %d routines, %d tasks, %d sessions, %d transactions",
		len(backup.Families), len(backup.Children), len(backup.Routines),
		len(backup.Tasks), len(backup.Sessions), len(backup.Transactions))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup stream
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Parent tables first
	if err := s.importFamilies(backup.Families); err != nil {
		return err
	}
	if err := s.importChildren(backup.Children); err != nil {
		return err
	}
	if err := s.importRoutines(backup.Routines); err != nil {
		return err
	}
	if err := s.importTasks(backup.Tasks); err != nil {
		return err
	}
	if err := s.importSessions(backup.Sessions); err != nil {
		return err
	}
	if err := s.importCompletions(backup.Completions); err != nil {
		return err
	}
	if err := s.importTransactions(backup.Transactions); err != nil {
		return err
	}
	if err := s.importStats(backup.Stats); err != nil {
		return err
	}
	if err := s.importAchievements(backup.Achievements); err != nil {
		return err
	}
	if err := s.importGrants(backup.Grants); err != nil {
		return err
	}
	if err := s.importRewards(backup.Rewards); err != nil {
		return err
	}
	if err := s.importRedemptions(backup.Redemptions); err != nil {
		return err
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportFamilies(backup *BackupData) error {
	query := "SELECT id, name, parent_email, parent_key_hash, created_at, updated_at FROM families ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var f FamilyBackup
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentEmail, &f.ParentKeyHash, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return err
		}
		backup.Families = append(backup.Families, f)
	}
	return rows.Err()
}

func (s *BackupService) exportChildren(backup *BackupData) error {
	query := "SELECT id, family_id, name, avatar_color, username, pin_hash, created_at, updated_at FROM child_profiles ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c ChildBackup
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.AvatarColor, &c.Username, &c.PINHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		backup.Children = append(backup.Children, c)
	}
	return rows.Err()
}

func (s *BackupService) exportRoutines(backup *BackupData) error {
	query := "SELECT id, family_id, name, schedule_days, auto_close_after_minutes, active, created_at, updated_at FROM routines ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RoutineBackup
		if err := rows.Scan(&r.ID, &r.FamilyID, &r.Name, &r.ScheduleDays, &r.AutoCloseAfterMinutes, &r.Active, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return err
		}
		backup.Routines = append(backup.Routines, r)
	}
	return rows.Err()
}

func (s *BackupService) exportTasks(backup *BackupData) error {
	query := "SELECT id, routine_id, child_profile_id, title, position, point_value, is_optional, active, deleted_at, created_at, updated_at FROM routine_tasks ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TaskBackup
		var deletedAt sql.NullTime
		if err := rows.Scan(&t.ID, &t.RoutineID, &t.ChildProfileID, &t.Title, &t.Position, &t.PointValue, &t.IsOptional, &t.Active, &deletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return err
		}
		if deletedAt.Valid {
			t.DeletedAt = &deletedAt.Time
		}
		backup.Tasks = append(backup.Tasks, t)
	}
	return rows.Err()
}

func (s *BackupService) exportSessions(backup *BackupData) error {
	query := `SELECT id, routine_id, child_profile_id, session_date, status, started_at,
		completed_at, planned_end_at, auto_closed_at, duration_seconds, points_awarded,
		bonus_multiplier, best_time_beaten, completion_reason, created_at
		FROM routine_sessions ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var se SessionBackup
		var startedAt, completedAt, plannedEndAt, autoClosedAt sql.NullTime
		var duration sql.NullInt64
		var reason sql.NullString
		if err := rows.Scan(&se.ID, &se.RoutineID, &se.ChildProfileID, &se.SessionDate, &se.Status,
			&startedAt, &completedAt, &plannedEndAt, &autoClosedAt, &duration,
			&se.PointsAwarded, &se.BonusMultiplier, &se.BestTimeBeaten, &reason, &se.CreatedAt); err != nil {
			return err
		}
		if startedAt.Valid {
			se.StartedAt = &startedAt.Time
		}
		if completedAt.Valid {
			se.CompletedAt = &completedAt.Time
		}
		if plannedEndAt.Valid {
			se.PlannedEndAt = &plannedEndAt.Time
		}
		if autoClosedAt.Valid {
			se.AutoClosedAt = &autoClosedAt.Time
		}
		if duration.Valid {
			seconds := int(duration.Int64)
			se.DurationSeconds = &seconds
		}
		if reason.Valid {
			se.CompletionReason = &reason.String
		}
		backup.Sessions = append(backup.Sessions, se)
	}
	return rows.Err()
}

func (s *BackupService) exportCompletions(backup *BackupData) error {
	query := "SELECT id, session_id, task_id, completed_at, position, points_awarded FROM task_completions ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CompletionBackup
		if err := rows.Scan(&c.ID, &c.SessionID, &c.TaskID, &c.CompletedAt, &c.Position, &c.PointsAwarded); err != nil {
			return err
		}
		backup.Completions = append(backup.Completions, c)
	}
	return rows.Err()
}

func (s *BackupService) exportTransactions(backup *BackupData) error {
	query := `SELECT id, family_id, profile_id, transaction_type, points_delta, balance_after,
		reason, reference_id, reference_table, created_at FROM point_transactions ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t TransactionBackup
		var refID sql.NullInt64
		var refTable sql.NullString
		if err := rows.Scan(&t.ID, &t.FamilyID, &t.ProfileID, &t.TransactionType, &t.PointsDelta,
			&t.BalanceAfter, &t.Reason, &refID, &refTable, &t.CreatedAt); err != nil {
			return err
		}
		if refID.Valid {
			t.ReferenceID = &refID.Int64
		}
		if refTable.Valid {
			t.ReferenceTable = &refTable.String
		}
		backup.Transactions = append(backup.Transactions, t)
	}
	return rows.Err()
}

func (s *BackupService) exportStats(backup *BackupData) error {
	query := `SELECT id, child_profile_id, routine_id, best_duration_seconds, best_session_id,
		last_completed_session_id, streak_days FROM performance_stats ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st StatBackup
		var bestDuration, bestSession, lastSession sql.NullInt64
		if err := rows.Scan(&st.ID, &st.ChildProfileID, &st.RoutineID, &bestDuration, &bestSession, &lastSession, &st.StreakDays); err != nil {
			return err
		}
		if bestDuration.Valid {
			seconds := int(bestDuration.Int64)
			st.BestDurationSeconds = &seconds
		}
		if bestSession.Valid {
			st.BestSessionID = &bestSession.Int64
		}
		if lastSession.Valid {
			st.LastCompletedSessionID = &lastSession.Int64
		}
		backup.Stats = append(backup.Stats, st)
	}
	return rows.Err()
}

func (s *BackupService) exportAchievements(backup *BackupData) error {
	query := "SELECT id, family_id, code, name, description FROM achievements ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AchievementBackup
		var familyID sql.NullInt64
		if err := rows.Scan(&a.ID, &familyID, &a.Code, &a.Name, &a.Description); err != nil {
			return err
		}
		if familyID.Valid {
			a.FamilyID = &familyID.Int64
		}
		backup.Achievements = append(backup.Achievements, a)
	}
	return rows.Err()
}

func (s *BackupService) exportGrants(backup *BackupData) error {
	query := "SELECT id, child_profile_id, achievement_id, awarded_at, metadata FROM user_achievements ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var g GrantBackup
		var metadata sql.NullString
		if err := rows.Scan(&g.ID, &g.ChildProfileID, &g.AchievementID, &g.AwardedAt, &metadata); err != nil {
			return err
		}
		if metadata.Valid {
			g.Metadata = &metadata.String
		}
		backup.Grants = append(backup.Grants, g)
	}
	return rows.Err()
}

func (s *BackupService) exportRewards(backup *BackupData) error {
	query := "SELECT id, family_id, name, points_cost, active FROM rewards ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RewardBackup
		if err := rows.Scan(&r.ID, &r.FamilyID, &r.Name, &r.PointsCost, &r.Active); err != nil {
			return err
		}
		backup.Rewards = append(backup.Rewards, r)
	}
	return rows.Err()
}

func (s *BackupService) exportRedemptions(backup *BackupData) error {
	query := "SELECT id, reward_id, child_profile_id, transaction_id, redeemed_at FROM reward_redemptions ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var r RedemptionBackup
		if err := rows.Scan(&r.ID, &r.RewardID, &r.ChildProfileID, &r.TransactionID, &r.RedeemedAt); err != nil {
			return err
		}
		backup.Redemptions = append(backup.Redemptions, r)
	}
	return rows.Err()
}

func (s *BackupService) importFamilies(families []FamilyBackup) error {
	log.Printf("Importing %d families...", len(families))
	for _, f := range families {
		query := "INSERT INTO families (id, name, parent_email, parent_key_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, f.ID, f.Name, f.ParentEmail, f.ParentKeyHash, f.CreatedAt, f.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import family %d: %w", f.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importChildren(children []ChildBackup) error {
	log.Printf("Importing %d children...", len(children))
	for _, c := range children {
		query := "INSERT INTO child_profiles (id, family_id, name, avatar_color, username, pin_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.ID, c.FamilyID, c.Name, c.AvatarColor, c.Username, c.PINHash, c.CreatedAt, c.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import child %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importRoutines(routines []RoutineBackup) error {
	log.Printf("Importing %d routines...", len(routines))
	for _, r := range routines {
		query := "INSERT INTO routines (id, family_id, name, schedule_days, auto_close_after_minutes, active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, r.ID, r.FamilyID, r.Name, r.ScheduleDays, r.AutoCloseAfterMinutes, r.Active, r.CreatedAt, r.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import routine %d: %w", r.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTasks(tasks []TaskBackup) error {
	log.Printf("Importing %d tasks...", len(tasks))
	for _, t := range tasks {
		query := "INSERT INTO routine_tasks (id, routine_id, child_profile_id, title, position, point_value, is_optional, active, deleted_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, t.ID, t.RoutineID, t.ChildProfileID, t.Title, t.Position, t.PointValue, t.IsOptional, t.Active, nullableTime(t.DeletedAt), t.CreatedAt, t.UpdatedAt); err != nil {
			return fmt.Errorf("failed to import task %d: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importSessions(sessions []SessionBackup) error {
	log.Printf("Importing %d sessions...", len(sessions))
	for _, se := range sessions {
		query := `INSERT INTO routine_sessions
			(id, routine_id, child_profile_id, session_date, status, started_at, completed_at,
			 planned_end_at, auto_closed_at, duration_seconds, points_awarded, bonus_multiplier,
			 best_time_beaten, completion_reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := s.db.Exec(query, se.ID, se.RoutineID, se.ChildProfileID, se.SessionDate, se.Status,
			nullableTime(se.StartedAt), nullableTime(se.CompletedAt), nullableTime(se.PlannedEndAt),
			nullableTime(se.AutoClosedAt), nullableInt(se.DurationSeconds), se.PointsAwarded,
			se.BonusMultiplier, se.BestTimeBeaten, nullableString(se.CompletionReason), se.CreatedAt); err != nil {
			return fmt.Errorf("failed to import session %d: %w", se.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCompletions(completions []CompletionBackup) error {
	log.Printf("Importing %d completions...", len(completions))
	for _, c := range completions {
		query := "INSERT INTO task_completions (id, session_id, task_id, completed_at, position, points_awarded) VALUES (?, ?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, c.ID, c.SessionID, c.TaskID, c.CompletedAt, c.Position, c.PointsAwarded); err != nil {
			return fmt.Errorf("failed to import completion %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importTransactions(transactions []TransactionBackup) error {
	log.Printf("Importing %d transactions...", len(transactions))
	for _, t := range transactions {
		query := `INSERT INTO point_transactions
			(id, family_id, profile_id, transaction_type, points_delta, balance_after, reason,
			 reference_id, reference_table, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		if _, err := s.db.Exec(query, t.ID, t.FamilyID, t.ProfileID, t.TransactionType, t.PointsDelta,
			t.BalanceAfter, t.Reason, nullableInt64(t.ReferenceID), nullableString(t.ReferenceTable), t.CreatedAt); err != nil {
			return fmt.Errorf("failed to import transaction %d: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importStats(stats []StatBackup) error {
	log.Printf("Importing %d stats...", len(stats))
	for _, st := range stats {
		query := `INSERT INTO performance_stats
			(id, child_profile_id, routine_id, best_duration_seconds, best_session_id,
			 last_completed_session_id, streak_days)
			VALUES (?, ?, ?, ?, ?, ?, ?)`
		if _, err := s.db.Exec(query, st.ID, st.ChildProfileID, st.RoutineID,
			nullableInt(st.BestDurationSeconds), nullableInt64(st.BestSessionID),
			nullableInt64(st.LastCompletedSessionID), st.StreakDays); err != nil {
			return fmt.Errorf("failed to import stat %d: %w", st.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAchievements(achievements []AchievementBackup) error {
	log.Printf("Importing %d achievements...", len(achievements))
	for _, a := range achievements {
		query := "INSERT INTO achievements (id, family_id, code, name, description) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, a.ID, nullableInt64(a.FamilyID), a.Code, a.Name, a.Description); err != nil {
			return fmt.Errorf("failed to import achievement %d: %w", a.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importGrants(grants []GrantBackup) error {
	log.Printf("Importing %d grants...", len(grants))
	for _, g := range grants {
		query := "INSERT INTO user_achievements (id, child_profile_id, achievement_id, awarded_at, metadata) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, g.ID, g.ChildProfileID, g.AchievementID, g.AwardedAt, nullableString(g.Metadata)); err != nil {
			return fmt.Errorf("failed to import grant %d: %w", g.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importRewards(rewards []RewardBackup) error {
	log.Printf("Importing %d rewards...", len(rewards))
	for _, r := range rewards {
		query := "INSERT INTO rewards (id, family_id, name, points_cost, active) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, r.ID, r.FamilyID, r.Name, r.PointsCost, r.Active); err != nil {
			return fmt.Errorf("failed to import reward %d: %w", r.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importRedemptions(redemptions []RedemptionBackup) error {
	log.Printf("Importing %d redemptions...", len(redemptions))
	for _, r := range redemptions {
		query := "INSERT INTO reward_redemptions (id, reward_id, child_profile_id, transaction_id, redeemed_at) VALUES (?, ?, ?, ?, ?)"
		if _, err := s.db.Exec(query, r.ID, r.RewardID, r.ChildProfileID, r.TransactionID, r.RedeemedAt); err != nil {
			return fmt.Errorf("failed to import redemption %d: %w", r.ID, err)
		}
	}
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullableInt(n *int) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

func nullableInt64(n *int64) interface{} {
	if n == nil {
		return nil
	}
	return *n
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}
