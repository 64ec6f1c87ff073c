package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/aima-hub/internal/constants"
	"github.com/aima-hub/internal/logger"
	"github.com/aima-hub/internal/models"
	"github.com/aima-hub/internal/service"
)

// SampleArticles 站点初始化示例文章
func SampleArticles() []service.CreateArticleInput {
	return []service.CreateArticleInput{
		{
			Slug:     "gpt-4-marketing-automation",
			Title:    "GPT-4を活用したマーケティング自動化の実践ガイド",
			Excerpt:  "GPT-4の強力な自然言語処理能力を活用して、マーケティング業務を効率化する具体的な手法をご紹介します。",
			Content:  gpt4MarketingContent,
			Author:   &models.Author{Name: "山田健太郎", Avatar: "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150"},
			Category: "AI技術",
			Tags:     []string{"GPT-4", "マーケティング自動化", "AI活用", "効率化"},
			Image:    "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=800",
			Featured: true,
			Status:   constants.ArticleStatusPublished,
			SEO: &models.SEO{
				MetaTitle:       "GPT-4マーケティング自動化ガイド | AI Marketing News",
				MetaDescription: "GPT-4を活用したマーケティング自動化の実践手法を詳しく解説。コンテンツ生成から顧客対応まで、効率化のポイントをご紹介します。",
				OGTitle:         "GPT-4を活用したマーケティング自動化の実践ガイド",
				OGImage:         "https://images.unsplash.com/photo-1677442136019-21780ecad995?w=1200",
				Keywords:        []string{"GPT-4", "マーケティング自動化", "AI", "効率化", "コンテンツ生成"},
			},
			PublishedAt: mustTime("2024-08-20T10:00:00Z"),
		},
		{
			Slug:     "ai-content-marketing-strategy",
			Title:    "AIを活用したコンテンツマーケティング戦略2024",
			Excerpt:  "2024年のコンテンツマーケティングにおけるAI活用の最新トレンドと実践的なアプローチを解説します。",
			Content:  contentStrategyContent,
			Author:   &models.Author{Name: "佐藤美咲", Avatar: "https://images.unsplash.com/photo-1494790108755-2616b612b786?w=150"},
			Category: "マーケティング戦略",
			Tags:     []string{"コンテンツマーケティング", "AI活用", "戦略", "2024トレンド"},
			Image:    "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=800",
			Featured: true,
			Status:   constants.ArticleStatusPublished,
			SEO: &models.SEO{
				MetaTitle:       "AIコンテンツマーケティング戦略2024 | AI Marketing News",
				MetaDescription: "2024年のコンテンツマーケティングにおけるAI活用の最新トレンドと実践的なアプローチを専門家が解説します。",
				Keywords:        []string{"コンテンツマーケティング", "AI", "戦略", "2024", "マーケティング"},
			},
			PublishedAt: mustTime("2024-08-18T14:30:00Z"),
		},
		{
			Slug:     "chatgpt-customer-support",
			Title:    "ChatGPTを活用したカスタマーサポートの最適化",
			Excerpt:  "ChatGPTの導入により、カスタマーサポートの品質向上とコスト削減を同時に実現する方法を詳しく解説します。",
			Content:  customerSupportContent,
			Author:   &models.Author{Name: "田中雄一", Avatar: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=150"},
			Category: "カスタマーサポート",
			Tags:     []string{"ChatGPT", "カスタマーサポート", "最適化", "AI導入"},
			Image:    "https://images.unsplash.com/photo-1553775282-20af80779df7?w=800",
			Status:   constants.ArticleStatusPublished,
			SEO: &models.SEO{
				MetaTitle:       "ChatGPTカスタマーサポート最適化ガイド | AI Marketing News",
				MetaDescription: "ChatGPTを活用したカスタマーサポートの品質向上とコスト削減を同時に実現する方法を詳しく解説します。",
				OGImage:         "https://images.unsplash.com/photo-1553775282-20af80779df7?w=1200",
				Keywords:        []string{"ChatGPT", "カスタマーサポート", "最適化", "AI", "顧客対応"},
			},
			PublishedAt: mustTime("2024-08-15T09:15:00Z"),
		},
	}
}

// Run 存储为空时写入示例文章，返回写入数量
func Run(ctx context.Context, svc *service.ArticleService) (int, error) {
	_, total, err := svc.ListAdmin(ctx, service.AdminListQuery{Page: 1, PageSize: 1})
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	if total > 0 {
		logger.Infow("seed_skipped", "existing_articles", total)
		return 0, nil
	}
	created := 0
	for _, input := range SampleArticles() {
		article, err := svc.Create(ctx, input)
		if err != nil {
			return created, fmt.Errorf("seed article %s: %w", input.Slug, err)
		}
		logger.Infow("seed_article_created", "slug", article.Slug)
		created++
	}
	return created, nil
}

func mustTime(raw string) *time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		panic(err)
	}
	return &t
}

const gpt4MarketingContent = `# GPT-4を活用したマーケティング自動化の実践ガイド

マーケティング業界において、AI技術の活用は競争優位性を獲得するための必須戦略となっています。

## 1. コンテンツ生成の自動化

- **ブログ記事**: SEOに最適化された記事の自動生成
- **SNS投稿**: 各プラットフォームに適したコンテンツの作成
- **メールマーケティング**: パーソナライズされたメール文面の自動生成

## 2. 顧客対応の自動化

GPT-4を活用したチャットボットは複雑な質問にも自然な対話で対応し、顧客の意図を正確に理解します。

## 3. 実装のベストプラクティス

1. **パイロットプロジェクト**: 小規模な施策から開始
2. **効果測定**: KPIを設定し、改善効果を定量化
3. **スケールアップ**: 成功事例を他の業務に展開

## まとめ

次世代のマーケティング戦略として、GPT-4の活用を検討してみてはいかがでしょうか。`

const contentStrategyContent = `# AIを活用したコンテンツマーケティング戦略2024

2024年、コンテンツマーケティングはAIの進化によって大きな転換期を迎えています。

## 1. データドリブンな企画

検索トレンドや顧客データをAIで分析し、需要の高いテーマを特定します。

## 2. パーソナライゼーション

読者の行動履歴に応じて、最適なコンテンツを最適なタイミングで届けます。

## 3. 制作プロセスの効率化

下書き作成や校正をAIに任せ、編集者は戦略と品質管理に集中します。

## まとめ

AIと人間の強みを組み合わせることが、これからのコンテンツ戦略の鍵となります。`

const customerSupportContent = `# ChatGPTを活用したカスタマーサポートの最適化

ChatGPTの導入により、サポート品質の向上とコスト削減を同時に実現できます。

## 1. 一次対応の自動化

よくある質問への回答を自動化し、24時間365日の対応を可能にします。

## 2. オペレーター支援

回答候補の提示や問い合わせ内容の要約により、対応時間を短縮します。

## 3. 導入時の注意点

- 回答品質のモニタリング
- エスカレーション基準の明確化
- 個人情報の取り扱いルールの整備

## まとめ

段階的な導入と継続的な改善で、顧客満足度の高いサポート体制を構築しましょう。`
