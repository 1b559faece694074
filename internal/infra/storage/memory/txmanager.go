package memory

import "context"

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// Do выполняет fn под эксклюзивной блокировкой хранилища
// Вложенный вызов переиспользует внешнюю "транзакцию"
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.tx.Lock()
	defer s.tx.Unlock()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// DoSerializable в памяти совпадает с Do: транзакции и так выполняются по одной
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// DoReadOnly выполняет fn без блокировки пишущих транзакций
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
