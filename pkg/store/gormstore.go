package store

import (
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cloudforge-io/axon/pkg/types"
)

// serverModel is the gorm row shape for a ServerRule, mirroring
// rules_store.py's "servers" table (id, endpoint, port, protocol,
// enabled).
type serverModel struct {
	ID       string `gorm:"primaryKey"`
	Endpoint string `gorm:"not null;index:idx_server_identity,unique"`
	Port     int    `gorm:"not null;index:idx_server_identity,unique"`
	Protocol string `gorm:"not null;index:idx_server_identity,unique"`
	Enabled  bool   `gorm:"not null;default:true"`
}

func (serverModel) TableName() string { return "servers" }

func toServerModel(r *types.ServerRule) *serverModel {
	return &serverModel{ID: r.ID, Endpoint: r.Endpoint, Port: r.Port, Protocol: string(r.Protocol), Enabled: r.Enabled}
}

func (m *serverModel) toRule() *types.ServerRule {
	return &types.ServerRule{ID: m.ID, Endpoint: m.Endpoint, Port: m.Port, Protocol: types.Protocol(m.Protocol), Enabled: m.Enabled}
}

// clientModel is the gorm row shape for a ClientRule, mirroring
// rules_store.py's "clients" table.
type clientModel struct {
	ID           string `gorm:"primaryKey"`
	Source       string `gorm:"not null;index:idx_client_identity,unique"`
	Destination  string `gorm:"not null;index:idx_client_identity,unique"`
	Port         int    `gorm:"not null;index:idx_client_identity,unique"`
	Protocol     string `gorm:"not null;index:idx_client_identity,unique"`
	Allowed      bool   `gorm:"not null;index:idx_client_identity,unique"`
	Enabled      bool   `gorm:"not null;default:true"`
	RequestCount int    `gorm:"not null;default:1"`
}

func (clientModel) TableName() string { return "clients" }

func toClientModel(r *types.ClientRule) *clientModel {
	return &clientModel{
		ID: r.ID, Source: r.Source, Destination: r.Destination, Port: r.Port,
		Protocol: string(r.Protocol), Allowed: r.Allowed, Enabled: r.Enabled, RequestCount: r.RequestCount,
	}
}

func (m *clientModel) toRule() *types.ClientRule {
	return &types.ClientRule{
		ID: m.ID, Source: m.Source, Destination: m.Destination, Port: m.Port,
		Protocol: types.Protocol(m.Protocol), Allowed: m.Allowed, Enabled: m.Enabled, RequestCount: m.RequestCount,
	}
}

// recordModel is the gorm row shape for an aggregated TrafficRecord.
type recordModel struct {
	ID           string `gorm:"primaryKey"`
	Source       string `gorm:"not null;index:idx_record_group"`
	Destination  string `gorm:"not null;index:idx_record_group"`
	Port         int    `gorm:"not null;index:idx_record_group"`
	Protocol     string `gorm:"not null;index:idx_record_group"`
	Connected    bool   `gorm:"not null;index:idx_record_group"`
	SuccessCount int64  `gorm:"not null;default:0"`
	FailureCount int64  `gorm:"not null;default:0"`
	CreatedAt    time.Time
}

func (recordModel) TableName() string { return "traffic_records" }

func toRecordModel(r *types.TrafficRecord) *recordModel {
	return &recordModel{
		ID: r.ID, Source: r.Source, Destination: r.Destination, Port: r.Port,
		Protocol: string(r.Protocol), Connected: r.Connected,
		SuccessCount: r.SuccessCount, FailureCount: r.FailureCount, CreatedAt: r.CreatedAt,
	}
}

func (m *recordModel) toRecord() *types.TrafficRecord {
	return &types.TrafficRecord{
		ID: m.ID, Source: m.Source, Destination: m.Destination, Port: m.Port,
		Protocol: types.Protocol(m.Protocol), Connected: m.Connected,
		SuccessCount: m.SuccessCount, FailureCount: m.FailureCount, CreatedAt: m.CreatedAt,
	}
}

// GormStore is the sqlite-backed RuleStore/RecordStore implementation.
type GormStore struct {
	db *gorm.DB
}

// Open creates (or opens) a sqlite database at dsn and auto-migrates
// the servers/clients/traffic_records tables.
func Open(dsn string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&serverModel{}, &clientModel{}, &recordModel{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) AddServer(rule *types.ServerRule) error {
	return s.db.Create(toServerModel(rule)).Error
}

func (s *GormStore) AddServerBatch(rules []*types.ServerRule) error {
	if len(rules) == 0 {
		return nil
	}
	models := make([]*serverModel, len(rules))
	for i, r := range rules {
		models[i] = toServerModel(r)
	}
	return s.db.Create(&models).Error
}

func (s *GormStore) GetServers(filter ServerFilter) ([]*types.ServerRule, error) {
	query := s.db.Model(&serverModel{})
	if filter.Endpoint != nil {
		query = query.Where("endpoint = ?", *filter.Endpoint)
	}
	if filter.Port != nil {
		query = query.Where("port = ?", *filter.Port)
	}
	if filter.Protocol != nil {
		query = query.Where("protocol = ?", string(*filter.Protocol))
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}

	var models []serverModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	rules := make([]*types.ServerRule, len(models))
	for i := range models {
		rules[i] = models[i].toRule()
	}
	return rules, nil
}

func (s *GormStore) DeleteServers(filter ServerFilter) error {
	query := s.db.Model(&serverModel{})
	if filter.Endpoint != nil {
		query = query.Where("endpoint = ?", *filter.Endpoint)
	}
	if filter.Port != nil {
		query = query.Where("port = ?", *filter.Port)
	}
	if filter.Protocol != nil {
		query = query.Where("protocol = ?", string(*filter.Protocol))
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}
	result := query.Delete(&serverModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("store: no matching servers found")
	}
	return nil
}

func (s *GormStore) DeleteAllServers() error {
	return s.db.Exec("DELETE FROM servers").Error
}

func (s *GormStore) SetServerEnabled(id string, enabled bool) error {
	return s.db.Model(&serverModel{}).Where("id = ?", id).Update("enabled", enabled).Error
}

func (s *GormStore) AddClient(rule *types.ClientRule) error {
	return s.db.Create(toClientModel(rule)).Error
}

func (s *GormStore) AddClientBatch(rules []*types.ClientRule) error {
	if len(rules) == 0 {
		return nil
	}
	models := make([]*clientModel, len(rules))
	for i, r := range rules {
		models[i] = toClientModel(r)
	}
	return s.db.Create(&models).Error
}

func (s *GormStore) clientQuery(filter ClientFilter) *gorm.DB {
	query := s.db.Model(&clientModel{})
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.Destination != nil {
		query = query.Where("destination = ?", *filter.Destination)
	}
	if filter.Port != nil {
		query = query.Where("port = ?", *filter.Port)
	}
	if filter.Protocol != nil {
		query = query.Where("protocol = ?", string(*filter.Protocol))
	}
	if filter.Enabled != nil {
		query = query.Where("enabled = ?", *filter.Enabled)
	}
	if filter.Allowed != nil {
		query = query.Where("allowed = ?", *filter.Allowed)
	}
	return query
}

func (s *GormStore) GetClients(filter ClientFilter) ([]*types.ClientRule, error) {
	var models []clientModel
	if err := s.clientQuery(filter).Find(&models).Error; err != nil {
		return nil, err
	}
	rules := make([]*types.ClientRule, len(models))
	for i := range models {
		rules[i] = models[i].toRule()
	}
	return rules, nil
}

func (s *GormStore) DeleteClients(filter ClientFilter) error {
	result := s.clientQuery(filter).Delete(&clientModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("store: no matching clients found")
	}
	return nil
}

func (s *GormStore) DeleteAllClients() error {
	return s.db.Exec("DELETE FROM clients").Error
}

func (s *GormStore) SetClientEnabled(id string, enabled bool) error {
	return s.db.Model(&clientModel{}).Where("id = ?", id).Update("enabled", enabled).Error
}

func (s *GormStore) SetClientAllowed(id string, allowed bool) error {
	return s.db.Model(&clientModel{}).Where("id = ?", id).Update("allowed", allowed).Error
}

func (s *GormStore) IncrementRequestCount(id string, delta int) error {
	return s.db.Model(&clientModel{}).Where("id = ?", id).
		UpdateColumn("request_count", gorm.Expr("request_count + ?", delta)).Error
}

func (s *GormStore) AddRecordsBatch(records []*types.TrafficRecord) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]*recordModel, len(records))
	for i, r := range records {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = time.Now()
		}
		models[i] = toRecordModel(r)
	}
	return s.db.Create(&models).Error
}

func (s *GormStore) recordQuery(filter RecordFilter) *gorm.DB {
	query := s.db.Model(&recordModel{})
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	if filter.Destination != nil {
		query = query.Where("destination = ?", *filter.Destination)
	}
	if filter.Port != nil {
		query = query.Where("port = ?", *filter.Port)
	}
	if filter.Protocol != nil {
		query = query.Where("protocol = ?", string(*filter.Protocol))
	}
	return query
}

func (s *GormStore) GetRecords(filter RecordFilter) ([]*types.TrafficRecord, error) {
	var models []recordModel
	if err := s.recordQuery(filter).Find(&models).Error; err != nil {
		return nil, err
	}
	records := make([]*types.TrafficRecord, len(models))
	for i := range models {
		records[i] = models[i].toRecord()
	}
	return records, nil
}

func (s *GormStore) SumWindow(filter RecordFilter, since, until int64) (int64, int64, error) {
	var row struct {
		SuccessTotal int64
		FailureTotal int64
	}
	query := s.recordQuery(filter).
		Where("created_at >= ? AND created_at < ?", time.Unix(since, 0), time.Unix(until, 0)).
		Select("COALESCE(SUM(success_count), 0) AS success_total, COALESCE(SUM(failure_count), 0) AS failure_total")
	if err := query.Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.SuccessTotal, row.FailureTotal, nil
}

// Close releases the underlying database connection.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
