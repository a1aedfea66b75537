package config

import (
	"os"

	"github.com/joho/godotenv"
)

type (
	Container struct {
		App    *App
		Token  *Token
		DB     *DB
		HTTP   *HTTP
		Redis  *Redis
		Mongo  *Mongo
		Gemini *Gemini
	}

	App struct {
		Name string
		Env  string
	}

	Token struct {
		Secret string
	}

	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	HTTP struct {
		Env            string
		Port           string
		AllowedOrigins string
		URL            string
		// PublicBaseURL is the externally reachable base for stored
		// image URLs, e.g. https://marketplace.example.com
		PublicBaseURL string
	}

	Redis struct {
		Address  string
		Password string
	}

	Mongo struct {
		URI    string
		DBName string
	}

	Gemini struct {
		APIKey string
		Model  string
	}
)

func New() (*Container, error) {
	if os.Getenv("APP_ENV") != "production" {
		err := godotenv.Load()
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Name: os.Getenv("APP_NAME"),
		Env:  os.Getenv("APP_ENV"),
	}

	token := &Token{
		Secret: os.Getenv("TOKEN_SECRET"),
	}

	db := &DB{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		Name:     os.Getenv("DB_NAME"),
	}

	http := &HTTP{
		Port:           os.Getenv("HTTP_PORT"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		URL:            os.Getenv("HTTP_URL"),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		Env:            os.Getenv("APP_ENV"),
	}

	redis := &Redis{
		Address:  os.Getenv("REDIS_ADDRESS"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	mongo := &Mongo{
		URI:    os.Getenv("MONGO_URI"),
		DBName: os.Getenv("MONGO_DB_NAME"),
	}

	gemini := &Gemini{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}
	if gemini.Model == "" {
		gemini.Model = "gemini-1.5-flash"
	}

	return &Container{
		App:    app,
		Token:  token,
		DB:     db,
		HTTP:   http,
		Redis:  redis,
		Mongo:  mongo,
		Gemini: gemini,
	}, nil
}
