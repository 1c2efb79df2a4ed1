package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"jobtrack/internal/auth"
	"jobtrack/internal/config"
	"jobtrack/internal/database"
	"jobtrack/internal/schema"
	"jobtrack/internal/store"
)

// databaseFlags 覆盖环境变量中的数据库配置，空值表示沿用环境变量。
type databaseFlags struct {
	driver   string
	url      string
	host     string
	port     int
	name     string
	user     string
	password string
	sslMode  string
}

func main() {
	var (
		email      = flag.String("email", "", "用户邮箱（必填）")
		password   = flag.String("password", "", "新用户密码（可选，留空则随机生成并打印一次）")
		deactivate = flag.Bool("deactivate", false, "停用已有用户，而不是创建")
		activate   = flag.Bool("activate", false, "重新启用已有用户，而不是创建")
		dbFlags    databaseFlags
	)
	flag.StringVar(&dbFlags.driver, "db-driver", "", "数据库驱动 postgres 或 sqlite（可选，默认读 DATABASE_DRIVER）")
	flag.StringVar(&dbFlags.url, "db-url", "", "数据库连接串（可选，默认读 DATABASE_URL）")
	flag.StringVar(&dbFlags.host, "db-host", "", "数据库 Host（可选，默认读 DATABASE_HOST）")
	flag.IntVar(&dbFlags.port, "db-port", 0, "数据库 Port（可选，默认读 DATABASE_PORT）")
	flag.StringVar(&dbFlags.name, "db-name", "", "数据库名（可选，默认读 POSTGRES_DB）")
	flag.StringVar(&dbFlags.user, "db-user", "", "数据库用户（可选，默认读 POSTGRES_USER）")
	flag.StringVar(&dbFlags.password, "db-password", "", "数据库密码（可选，默认读 POSTGRES_PASSWORD）")
	flag.StringVar(&dbFlags.sslMode, "db-sslmode", "", "数据库 SSLMODE（可选，默认读 DATABASE_SSLMODE）")
	flag.Parse()

	e := strings.TrimSpace(*email)
	if e == "" {
		log.Fatal("missing required flag: -email")
	}
	if *activate && *deactivate {
		log.Fatal("-activate and -deactivate are mutually exclusive")
	}

	cfg, err := loadConfig(dbFlags)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	uow := database.NewUnitOfWork(db, cfg.Database.PoolTimeout)
	ctx := context.Background()

	if *activate || *deactivate {
		err := uow.Do(ctx, func(tx *gorm.DB) error {
			return store.SetUserActive(ctx, tx, e, *activate)
		})
		if errors.Is(err, store.ErrNotFound) {
			log.Fatalf("user %q not found", e)
		}
		if err != nil {
			log.Fatalf("update user: %v", err)
		}
		fmt.Printf("用户 %s is_active=%t\n", e, *activate)
		return
	}

	pw := *password
	generated := pw == ""
	if generated {
		if pw, err = generateRandomPassword(24); err != nil {
			log.Fatalf("generate password: %v", err)
		}
	} else if err := checkPassword(pw); err != nil {
		log.Fatal(err)
	}

	hashed, err := auth.HashPasswordWithCost(pw, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var user *database.User
	err = uow.Do(ctx, func(tx *gorm.DB) error {
		var err error
		user, err = store.CreateUser(ctx, tx, e, hashed)
		return err
	})
	if errors.Is(err, store.ErrEmailTaken) {
		log.Fatalf("user %q already exists", e)
	}
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("已创建用户 id=%d email=%s\n", user.ID, user.Email)
	if generated {
		fmt.Printf("初始密码: %s\n", pw)
		fmt.Println("提示：该密码仅显示一次。")
	}
}

// loadConfig 读取环境变量（及 .env）中的配置，再用非空的命令行参数覆盖数据库设置。
func loadConfig(f databaseFlags) (*config.Config, error) {
	cfg, err := config.LoadAdmin()
	if err != nil {
		return nil, err
	}

	db := &cfg.Database
	override(&db.Driver, f.driver)
	override(&db.URL, f.url)
	override(&db.Host, f.host)
	override(&db.Name, f.name)
	override(&db.User, f.user)
	override(&db.Password, f.password)
	override(&db.SSLMode, f.sslMode)
	if f.port > 0 {
		db.Port = f.port
	}

	if db.Driver == "sqlite" && strings.TrimSpace(db.URL) == "" {
		return nil, errors.New("sqlite requires a connection string (-db-url or DATABASE_URL)")
	}
	return cfg, nil
}

func override(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}

// checkPassword 与注册接口保持一致：8 到 72 个字符，且不超过 72 字节。
func checkPassword(pw string) error {
	n := len([]rune(pw))
	if n < 8 || n > 72 {
		return errors.New("password must be between 8 and 72 characters")
	}
	if len(pw) > schema.MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes", schema.MaxPasswordBytes)
	}
	return nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
