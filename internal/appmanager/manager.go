package appmanager

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"LowesMerge/api"
	"LowesMerge/internal/audit"
	"LowesMerge/internal/jobs"
	"LowesMerge/internal/logger"
	"LowesMerge/internal/lookup"
	"LowesMerge/internal/merge"
	"LowesMerge/internal/notification"
	"LowesMerge/internal/progress"
	"LowesMerge/internal/reportstore"
	"LowesMerge/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"
)

var pgxPool *pgxpool.Pool
var archiver merge.Archiver

func SetPgxPool(pool *pgxpool.Pool) {
	pgxPool = pool
}

// GetPgxPool returns the pgx pool connection
func GetPgxPool() *pgxpool.Pool {
	return pgxPool
}

// SetArchiver enables report archiving for every runner built afterwards.
func SetArchiver(a merge.Archiver) {
	archiver = a
}

// ------------------- SHARED STATE -------------------

// shared holds the collaborators every merge entry point uses.
type shared struct {
	once    sync.Once
	reports *reportstore.Store
	broker  *progress.Broker
	notices *notification.NotificationService
	audit   *audit.Store
}

var state shared

func (s *shared) init() {
	s.once.Do(func() {
		if s.reports == nil {
			s.reports = reportstore.NewReportStoreService(nil)
		}
		s.broker = progress.NewBroker()
		s.notices = notification.NewNotificationService(notification.DefaultLimit)
		if pgxPool != nil {
			s.audit = audit.NewStore(pgxPool)
		}
	})
}

// newRunner builds a runner with the lookup tables named by cfg["lookup_file"].
func newRunner(cfg map[string]interface{}) (*merge.Runner, error) {
	state.init()
	path, _ := cfg["lookup_file"].(string)
	tables, err := lookup.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load lookup tables: %w", err)
	}
	r := &merge.Runner{
		Lookups:  tables,
		Reports:  state.reports,
		Progress: state.broker,
		Notices:  state.notices,
		Archive:  archiver,
	}
	if state.audit != nil {
		r.Audit = state.audit
	}
	return r, nil
}

var serviceConstructors = map[string]func(map[string]interface{}) (serviceiface.Service, error){
	"logger": func(cfg map[string]interface{}) (serviceiface.Service, error) {
		return logger.NewLoggerService(cfg), nil
	},
	"reportstore": func(cfg map[string]interface{}) (serviceiface.Service, error) {
		store := reportstore.NewReportStoreService(cfg)
		state.reports = store
		return store, nil
	},
	"inbox": func(cfg map[string]interface{}) (serviceiface.Service, error) {
		runner, err := newRunner(cfg)
		if err != nil {
			return nil, err
		}
		return jobs.NewInboxService(cfg, runner), nil
	},
	"gateway": func(cfg map[string]interface{}) (serviceiface.Service, error) {
		runner, err := newRunner(cfg)
		if err != nil {
			return nil, err
		}
		h := &api.Handlers{
			Runner:   runner,
			Reports:  state.reports,
			Progress: state.broker,
			Notices:  state.notices,
		}
		if state.audit != nil {
			h.Runs = state.audit
		}
		return api.NewGatewayService(cfg, h), nil
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	mu       sync.Mutex
}

func NewAppManager() *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	for _, service := range am.services {
		log.Println("Starting service:", service.Name())
		if err := service.Start(); err != nil {
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
	}
	return nil
}

func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	for i := len(am.services) - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil {
			return fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	return nil
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseServiceSequence(data)
}

// ParseServiceSequence decodes services.yaml and sorts by start_order.
func ParseServiceSequence(data []byte) ([]ServiceConfig, error) {
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, fmt.Errorf("parse services.yaml: %w", err)
	}
	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})
	return seq.Services, nil
}

// AutoRegisterServices builds every known service in start order. Unknown
// names are logged and skipped.
func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) error {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			log.Printf("[appmanager] unknown service %q in services.yaml, skipping", svc.Name)
			continue
		}
		if svc.Config == nil {
			svc.Config = map[string]interface{}{}
		}
		service, err := constructor(svc.Config)
		if err != nil {
			return fmt.Errorf("build service %s: %w", svc.Name, err)
		}
		am.RegisterService(service)
	}

	for _, svc := range am.services {
		if l, ok := svc.(*logger.LoggerService); ok {
			logger.SetGlobalLogger(l)
			break
		}
	}
	return nil
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	am.mu.Lock()
	defer am.mu.Unlock()
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}
