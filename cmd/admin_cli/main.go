package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"watch-catalog/internal/config"
	"watch-catalog/internal/db"
	"watch-catalog/internal/repository"
	"watch-catalog/internal/service"
)

// admin_cli gestiona el flag isAdmin desde la terminal. Es la única vía para
// crear el primer administrador.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal(err)
	}

	memberSvc := service.NewMemberService(logger, repository.NewPgMemberRepository(pool))

	for {
		fmt.Println("===== Administración de miembros =====")
		fmt.Println("[L] Listar administradores")
		fmt.Println("[P] Promover a admin")
		fmt.Println("[D] Quitar admin")
		fmt.Println("[Q] Salir")
		fmt.Print("Selección: ")

		choice, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			return
		}
		switch strings.ToUpper(strings.TrimSpace(choice)) {
		case "L":
			listAdmins(ctx, memberSvc)
		case "P":
			setAdminFlow(ctx, reader, memberSvc, true)
		case "D":
			setAdminFlow(ctx, reader, memberSvc, false)
		case "Q":
			return
		default:
			fmt.Println("Selección inválida.")
		}
	}
}

func listAdmins(ctx context.Context, memberSvc *service.MemberService) {
	members, _, err := memberSvc.List(ctx, repository.MemberFilter{
		Sort: repository.Sort{Field: "email", Order: repository.SortAsc},
	})
	if err != nil {
		fmt.Printf("Error listando miembros: %v\n", err)
		return
	}
	found := false
	for _, m := range members {
		if !m.IsAdmin {
			continue
		}
		found = true
		fmt.Printf("- %s <%s> (ID: %s)\n", m.Membername, m.Email, m.ID)
	}
	if !found {
		fmt.Println("No hay administradores.")
	}
}

func setAdminFlow(ctx context.Context, reader *bufio.Reader, memberSvc *service.MemberService, isAdmin bool) {
	fmt.Print("Email del miembro: ")
	email, _ := reader.ReadString('\n')

	member, err := memberSvc.SetAdmin(ctx, email, isAdmin)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			fmt.Println("No existe un miembro con ese email.")
			return
		}
		fmt.Printf("Error actualizando miembro: %v\n", err)
		return
	}
	fmt.Printf("%s <%s> isAdmin=%t\n", member.Membername, member.Email, member.IsAdmin)
}
