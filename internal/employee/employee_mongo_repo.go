package employee

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const EmployeeCollection = "employees"

type employeeDocument struct {
	ID           primitive.ObjectID   `bson:"_id"`
	Name         string               `bson:"name"`
	Email        string               `bson:"email"`
	Phone        string               `bson:"phone"`
	Department   string               `bson:"department"`
	Salary       primitive.Decimal128 `bson:"salary"`
	ProfileImage string               `bson:"profileImage,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(EmployeeCollection)}
}

// EnsureMongoIndexes creates the unique email index and the listing sort index.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(EmployeeCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_employees_email"),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
	})
	return err
}

// WithTx is a no-op: every mutation is a single document write.
func (r *mongoRepository) WithTx(*sql.Tx) Repository {
	return r
}

func (r *mongoRepository) NewID() string {
	return primitive.NewObjectID().Hex()
}

func (r *mongoRepository) Create(ctx context.Context, empl *Employee) error {
	if empl.ID == "" {
		empl.ID = r.NewID()
	}
	now := time.Now().UTC()
	if empl.CreatedAt.IsZero() {
		empl.CreatedAt = now
	}
	empl.UpdatedAt = now

	doc, err := toDocument(empl)
	if err != nil {
		return err
	}
	_, err = r.coll.InsertOne(ctx, doc)
	return err
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*Employee, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var doc employeeDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, err
	}
	empl := fromDocument(doc)
	return &empl, nil
}

func (r *mongoRepository) List(ctx context.Context, q ListQuery) (ListResult, error) {
	q = q.Normalize()
	filter := searchFilter(q.Search)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return ListResult{}, err
	}

	employees := make([]Employee, 0, q.Limit)
	if total <= int64(q.Offset()) {
		return ListResult{Employees: employees, Total: total}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return ListResult{}, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc employeeDocument
		if err := cur.Decode(&doc); err != nil {
			return ListResult{}, err
		}
		employees = append(employees, fromDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return ListResult{}, err
	}

	return ListResult{Employees: employees, Total: total}, nil
}

func (r *mongoRepository) Update(ctx context.Context, empl *Employee) error {
	oid, err := primitive.ObjectIDFromHex(empl.ID)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	salary, err := primitive.ParseDecimal128(empl.Salary.String())
	if err != nil {
		return err
	}
	empl.UpdatedAt = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"name":         empl.Name,
		"email":        empl.Email,
		"phone":        empl.Phone,
		"department":   empl.Department,
		"salary":       salary,
		"profileImage": empl.ProfileImage,
		"updatedAt":    empl.UpdatedAt,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

type departmentBucket struct {
	Department  string               `bson:"_id"`
	Count       int64                `bson:"count"`
	TotalSalary primitive.Decimal128 `bson:"totalSalary"`
}

func (r *mongoRepository) Stats(ctx context.Context) (Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$department"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "totalSalary", Value: bson.D{{Key: "$sum", Value: "$salary"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Stats{}, err
	}
	defer cur.Close(ctx)

	stats := Stats{Departments: map[string]int64{}, TotalSalary: decimal.Zero}
	for cur.Next(ctx) {
		var b departmentBucket
		if err := cur.Decode(&b); err != nil {
			return Stats{}, err
		}
		stats.TotalEmployees += b.Count
		stats.Departments[b.Department] += b.Count
		stats.TotalSalary = stats.TotalSalary.Add(decimalFrom128(b.TotalSalary))
	}
	if err := cur.Err(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func searchFilter(term string) bson.M {
	if term == "" {
		return bson.M{}
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"email": re},
		bson.M{"department": re},
		bson.M{"phone": re},
	}}
}

func toDocument(empl *Employee) (employeeDocument, error) {
	oid, err := primitive.ObjectIDFromHex(empl.ID)
	if err != nil {
		return employeeDocument{}, err
	}
	salary, err := primitive.ParseDecimal128(empl.Salary.String())
	if err != nil {
		return employeeDocument{}, err
	}
	return employeeDocument{
		ID:           oid,
		Name:         empl.Name,
		Email:        empl.Email,
		Phone:        empl.Phone,
		Department:   empl.Department,
		Salary:       salary,
		ProfileImage: empl.ProfileImage,
		CreatedAt:    empl.CreatedAt,
		UpdatedAt:    empl.UpdatedAt,
	}, nil
}

func fromDocument(doc employeeDocument) Employee {
	return Employee{
		ID:           doc.ID.Hex(),
		Name:         doc.Name,
		Email:        doc.Email,
		Phone:        doc.Phone,
		Department:   doc.Department,
		Salary:       decimalFrom128(doc.Salary),
		ProfileImage: doc.ProfileImage,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}

func decimalFrom128(d primitive.Decimal128) decimal.Decimal {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Zero
	}
	return v
}
