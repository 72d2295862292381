package config_test

import (
	"os"
	"path/filepath"

	"curator/internal/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var configEnv = []string{
	"CURATOR_CONFIG", "DATABASE_DRIVER", "DATABASE_URL", "PORT", "AUTH_ENABLED", "AUTH_SECRET",
	"SYNC_IMAGES", "STATIC_DIR", "LOG_LEVEL", "CURATOR_URL", "CURATOR_TOKEN",
}

var _ = Describe("LoadConfig", func() {
	BeforeEach(func() {
		for _, key := range configEnv {
			if value, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, value)
			} else {
				DeferCleanup(os.Unsetenv, key)
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	writeConfig := func(body string) string {
		dir, err := os.MkdirTemp("", "curator-config")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		path := filepath.Join(dir, "curator.yaml")
		Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
		return path
	}

	It("returns defaults", func() {
		cfg, err := config.LoadConfig()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(Equal(config.DefaultConfig()))
	})

	It("reads environment variables", func() {
		os.Setenv("DATABASE_DRIVER", "postgres")
		os.Setenv("DATABASE_URL", "postgres://localhost/curator")
		os.Setenv("AUTH_ENABLED", "true")
		os.Setenv("AUTH_SECRET", "s3cret")
		os.Setenv("SYNC_IMAGES", "false")

		cfg, err := config.LoadConfig()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.DatabaseDriver).To(Equal(config.DriverPostgres))
		Expect(cfg.DatabaseURL).To(Equal("postgres://localhost/curator"))
		Expect(cfg.AuthEnabled).To(BeTrue())
		Expect(cfg.AuthSecret).To(Equal("s3cret"))
		Expect(cfg.SyncImages).To(BeFalse())
	})

	It("overlays a YAML file and lets the environment win", func() {
		os.Setenv("CURATOR_CONFIG", writeConfig(`
database_url: /var/lib/curator/pool.db
port: "9090"
static_dir: /srv/curator/public
sync_images: false
`))
		os.Setenv("PORT", "7070")

		cfg, err := config.LoadConfig()

		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.DatabaseURL).To(Equal("/var/lib/curator/pool.db"))
		Expect(cfg.StaticDir).To(Equal("/srv/curator/public"))
		Expect(cfg.SyncImages).To(BeFalse())
		Expect(cfg.Port).To(Equal("7070"))
		Expect(cfg.DatabaseDriver).To(Equal(config.DriverSQLite))
	})

	It("fails on a missing config file", func() {
		os.Setenv("CURATOR_CONFIG", "/nonexistent/curator.yaml")

		_, err := config.LoadConfig()
		Expect(err).To(HaveOccurred())
	})

	It("fails on an invalid boolean", func() {
		os.Setenv("AUTH_ENABLED", "sometimes")

		_, err := config.LoadConfig()
		Expect(err).To(MatchError(ContainSubstring("AUTH_ENABLED")))
	})

	It("requires a secret when auth is enabled", func() {
		os.Setenv("AUTH_ENABLED", "1")

		_, err := config.LoadConfig()
		Expect(err).To(MatchError("AUTH_ENABLED requires AUTH_SECRET"))
	})

	It("rejects unknown drivers", func() {
		os.Setenv("DATABASE_DRIVER", "mysql")

		_, err := config.LoadConfig()
		Expect(err).To(MatchError(ContainSubstring("unsupported database driver")))
	})
})
