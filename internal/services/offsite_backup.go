package services

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/hostpanel/backend/internal/config"
	"github.com/hostpanel/backend/internal/database"
	"github.com/hostpanel/backend/internal/models"
	"github.com/jlaffaye/ftp"
)

// OffsiteBackupService mirrors newly uploaded files to an FTP destination
// on an interval. Upload failures are logged and retried on the next run;
// they are never surfaced to users.
type OffsiteBackupService struct {
	cfg       *config.Config
	interval  time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	lastRunAt time.Time
}

// NewOffsiteBackupService creates the backup service. It is a no-op when
// BACKUP_FTP_HOST is not configured.
func NewOffsiteBackupService(cfg *config.Config) *OffsiteBackupService {
	return &OffsiteBackupService{
		cfg:      cfg,
		interval: time.Duration(cfg.BackupIntervalMin) * time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start begins the backup loop in a background goroutine
func (s *OffsiteBackupService) Start() {
	if s.cfg.BackupFTPHost == "" {
		log.Println("OffsiteBackup: FTP not configured, service disabled")
		return
	}

	s.lastRunAt = time.Now()
	s.wg.Add(1)
	go s.run()
	log.Printf("OffsiteBackup: mirroring uploads to %s every %v", s.cfg.BackupFTPHost, s.interval)
}

// Stop signals the loop to exit and waits for it
func (s *OffsiteBackupService) Stop() {
	if s.cfg.BackupFTPHost == "" {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
}

func (s *OffsiteBackupService) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			since := s.lastRunAt
			s.lastRunAt = time.Now()
			if err := s.mirrorSince(since); err != nil {
				log.Printf("OffsiteBackup: run failed: %v", err)
			}
		case <-s.stopChan:
			return
		}
	}
}

// mirrorSince uploads every file row created after the given time
func (s *OffsiteBackupService) mirrorSince(since time.Time) error {
	var files []models.File
	if err := database.DB.Where("created_at > ?", since).Find(&files).Error; err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.BackupFTPHost, s.cfg.BackupFTPPort)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return fmt.Errorf("FTP connection failed: %v", err)
	}
	defer conn.Quit()

	if err := conn.Login(s.cfg.BackupFTPUsername, s.cfg.BackupFTPPassword); err != nil {
		return fmt.Errorf("FTP login failed: %v", err)
	}

	if s.cfg.BackupFTPPath != "" && s.cfg.BackupFTPPath != "/" {
		if err := conn.ChangeDir(s.cfg.BackupFTPPath); err != nil {
			conn.MakeDir(s.cfg.BackupFTPPath)
			if err := conn.ChangeDir(s.cfg.BackupFTPPath); err != nil {
				return fmt.Errorf("FTP directory change failed: %v", err)
			}
		}
	}

	uploaded := 0
	for i := range files {
		if err := s.uploadOne(conn, &files[i]); err != nil {
			log.Printf("OffsiteBackup: %s: %v", files[i].StoredName, err)
			continue
		}
		uploaded++
	}

	log.Printf("OffsiteBackup: mirrored %d/%d new files to %s", uploaded, len(files), s.cfg.BackupFTPHost)
	return nil
}

func (s *OffsiteBackupService) uploadOne(conn *ftp.ServerConn, file *models.File) error {
	f, err := os.Open(file.Path)
	if err != nil {
		// Row/disk divergence: surfaced in logs, not repaired here
		return fmt.Errorf("open local file: %v", err)
	}
	defer f.Close()

	remoteName := fmt.Sprintf("user_%d_%s", file.UserID, file.StoredName)
	if err := conn.Stor(remoteName, f); err != nil {
		return fmt.Errorf("FTP upload failed: %v", err)
	}
	return nil
}
