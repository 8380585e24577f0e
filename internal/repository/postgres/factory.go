package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	repo "github.com/masembe/momopay-backend/internal/repository"
)

type Repositories struct {
	Users     repo.Users
	Orders    repo.Orders
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Orders:    &ordersRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
