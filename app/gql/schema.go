// Package gql exposes the GraphQL surface. Every operation resolves into
// the same services the REST controllers use; only the error mapping and
// response shapes differ.
package gql

import (
	"time"

	"feedboard/app/apperr"
	"feedboard/app/middleware"
	"feedboard/app/models"
	"feedboard/app/services"

	"github.com/graphql-go/graphql"
)

// NewSchema builds the executable schema over the feed and auth services.
func NewSchema(feed *services.FeedService, auth *services.AuthService) (graphql.Schema, error) {
	creatorType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Creator",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(services.CreatorSummary).ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(services.CreatorSummary).Name, nil
				},
			},
		},
	})

	postType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Post",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.Int),
				Resolve: postField(func(fp *services.FeedPost) interface{} { return fp.ID }),
			},
			"title": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: postField(func(fp *services.FeedPost) interface{} { return fp.Title }),
			},
			"content": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: postField(func(fp *services.FeedPost) interface{} { return fp.Content }),
			},
			"imageUrl": &graphql.Field{
				Type:    graphql.String,
				Resolve: postField(func(fp *services.FeedPost) interface{} { return fp.ImageURL }),
			},
			"creator": &graphql.Field{
				Type:    graphql.NewNonNull(creatorType),
				Resolve: postField(func(fp *services.FeedPost) interface{} { return fp.Creator }),
			},
			"createdAt": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: postField(func(fp *services.FeedPost) interface{} { return fp.CreatedAt.Format(time.RFC3339) }),
			},
			"updatedAt": &graphql.Field{
				Type:    graphql.NewNonNull(graphql.String),
				Resolve: postField(func(fp *services.FeedPost) interface{} { return fp.UpdatedAt.Format(time.RFC3339) }),
			},
		},
	})

	postsPageType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PostsPage",
		Fields: graphql.Fields{
			"posts": &graphql.Field{
				Type: graphql.NewNonNull(graphql.NewList(postType)),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(postsPage).Posts, nil
				},
			},
			"totalPosts": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(postsPage).Total, nil
				},
			},
		},
	})

	userType := graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*models.User).ID, nil
				},
			},
			"email": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*models.User).Email, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*models.User).Name, nil
				},
			},
			"status": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*models.User).Status, nil
				},
			},
			"posts": &graphql.Field{
				Type: graphql.NewList(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(*models.User).Posts, nil
				},
			},
		},
	})

	authDataType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthData",
		Fields: graphql.Fields{
			"token": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(authData).Token, nil
				},
			},
			"userId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(authData).UserID, nil
				},
			},
		},
	})

	postInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "PostInputData",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"content":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"imageUrl": &graphql.InputObjectFieldConfig{Type: graphql.String},
		},
	})

	userInputType := graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserInputData",
		Fields: graphql.InputObjectConfigFieldMap{
			"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"name":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootQuery",
		Fields: graphql.Fields{
			"post": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, ok := middleware.CallerID(p.Context); !ok {
						return nil, apperr.New(apperr.Auth, "not authenticated")
					}
					return feed.GetPost(p.Args["id"].(int))
				},
			},
			"posts": &graphql.Field{
				Type: graphql.NewNonNull(postsPageType),
				Args: graphql.FieldConfigArgument{
					"page": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if _, ok := middleware.CallerID(p.Context); !ok {
						return nil, apperr.New(apperr.Auth, "not authenticated")
					}
					page, _ := p.Args["page"].(int)
					posts, total, err := feed.ListPosts(page)
					if err != nil {
						return nil, err
					}
					return postsPage{Posts: posts, Total: total}, nil
				},
			},
			"user": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					callerID, ok := middleware.CallerID(p.Context)
					if !ok {
						return nil, apperr.New(apperr.Auth, "not authenticated")
					}
					return auth.Profile(callerID)
				},
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(authDataType),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					token, userID, err := auth.Login(p.Args["email"].(string), p.Args["password"].(string))
					if err != nil {
						return nil, err
					}
					return authData{Token: token, UserID: userID}, nil
				},
			},
		},
	})

	rootMutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "RootMutation",
		Fields: graphql.Fields{
			"createUser": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"userInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userInputType)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := p.Args["userInput"].(map[string]interface{})
					return auth.Signup(services.SignupInput{
						Email:    stringArg(in, "email"),
						Name:     stringArg(in, "name"),
						Password: stringArg(in, "password"),
					})
				},
			},
			"createPost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"postInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInputType)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					callerID, ok := middleware.CallerID(p.Context)
					if !ok {
						return nil, apperr.New(apperr.Auth, "not authenticated")
					}
					return feed.CreatePost(callerID, postInputArg(p.Args))
				},
			},
			"updatePost": &graphql.Field{
				Type: graphql.NewNonNull(postType),
				Args: graphql.FieldConfigArgument{
					"id":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"postInput": &graphql.ArgumentConfig{Type: graphql.NewNonNull(postInputType)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					callerID, ok := middleware.CallerID(p.Context)
					if !ok {
						return nil, apperr.New(apperr.Auth, "not authenticated")
					}
					return feed.UpdatePost(callerID, p.Args["id"].(int), postInputArg(p.Args))
				},
			},
			"updateStatus": &graphql.Field{
				Type: graphql.NewNonNull(userType),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					callerID, ok := middleware.CallerID(p.Context)
					if !ok {
						return nil, apperr.New(apperr.Auth, "not authenticated")
					}
					return auth.UpdateStatus(callerID, p.Args["status"].(string))
				},
			},
			"deletePost": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Boolean),
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					callerID, ok := middleware.CallerID(p.Context)
					if !ok {
						return nil, apperr.New(apperr.Auth, "not authenticated")
					}
					if err := feed.DeletePost(callerID, p.Args["id"].(int)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    rootQuery,
		Mutation: rootMutation,
	})
}

type postsPage struct {
	Posts []*services.FeedPost
	Total int
}

type authData struct {
	Token  string
	UserID int
}

func postField(pick func(fp *services.FeedPost) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		return pick(p.Source.(*services.FeedPost)), nil
	}
}

func stringArg(args map[string]interface{}, key string) string {
	s, _ := args[key].(string)
	return s
}

func postInputArg(args map[string]interface{}) services.PostInput {
	in, _ := args["postInput"].(map[string]interface{})
	return services.PostInput{
		Title:    stringArg(in, "title"),
		Content:  stringArg(in, "content"),
		ImageURL: stringArg(in, "imageUrl"),
	}
}
